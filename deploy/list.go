package deploy

import (
	"github.com/spf13/cobra"
)

var listFilter string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List agent engine deployments",
	Long: `List every deployment in the configured project and location. With
--filter, only deployments whose display name matches the glob pattern are
shown.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "glob pattern matched against display names")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := newManager(cmd)
	if err != nil {
		return err
	}
	m.List(cmd.Context(), listFilter)
	return nil
}
