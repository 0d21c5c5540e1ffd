package deploy

import (
	"github.com/spf13/cobra"
)

var (
	chatSession string
	chatUser    string
	chatRaw     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <engine-id> <message>",
	Short: "Send a message to a deployed agent and stream the response",
	Long: `Send one message into an existing session and print the streamed
response. By default the text of each chunk is printed as it arrives; with
--raw every chunk is printed as a full JSON record in arrival order.`,
	Args: cobra.ExactArgs(2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session ID to chat in (required)")
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user ID the session belongs to")
	chatCmd.Flags().BoolVar(&chatRaw, "raw", false, "print raw response chunks instead of text")
	chatCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.Chat(cmd.Context(), args[0], chatSession, args[1], chatUser, chatRaw)
	return nil
}
