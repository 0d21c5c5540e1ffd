package deploy

import (
	"github.com/spf13/cobra"
)

var (
	createSessionUser string
	listSessionsUser  string
)

var createSessionCmd = &cobra.Command{
	Use:   "create-session <engine-id>",
	Short: "Create a new chat session on a deployed agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateSession,
}

var listSessionsCmd = &cobra.Command{
	Use:   "list-sessions <engine-id>",
	Short: "List a user's chat sessions on a deployed agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runListSessions,
}

func init() {
	createSessionCmd.Flags().StringVar(&createSessionUser, "user", "", "user ID the session belongs to")
	listSessionsCmd.Flags().StringVar(&listSessionsUser, "user", "", "user ID whose sessions to list")
	rootCmd.AddCommand(createSessionCmd)
	rootCmd.AddCommand(listSessionsCmd)
}

func runCreateSession(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.CreateSession(cmd.Context(), args[0], createSessionUser)
	return nil
}

func runListSessions(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.ListSessions(cmd.Context(), args[0], listSessionsUser)
	return nil
}
