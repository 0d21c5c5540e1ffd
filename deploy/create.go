package deploy

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Package the agent and deploy a new engine",
	Long: `Package the shortening bot, upload the package and its requirements to
the staging bucket and create a new agent engine deployment. The command
blocks until the platform finishes the deployment.`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.Create(cmd.Context())
	return nil
}
