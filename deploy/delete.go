package deploy

import (
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <engine-id>",
	Short: "Delete an agent engine deployment",
	Long: `Delete a deployment by engine ID or fully qualified resource name.
A deployment that still has sessions is refused unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "also delete sessions and other child resources")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.Delete(cmd.Context(), args[0], deleteForce)
	return nil
}
