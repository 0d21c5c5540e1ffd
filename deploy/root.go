// Package deploy implements the deployment CLI: creating, listing and
// deleting agent engine deployments and talking to deployed agents through
// remote sessions.
package deploy

import (
	"fmt"
	"os"

	"github.com/m4xw311/shortbot/agent"
	"github.com/m4xw311/shortbot/config"
	"github.com/m4xw311/shortbot/engine"
	"github.com/m4xw311/shortbot/manager"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	debug      bool
	deployment *config.Deployment
)

var rootCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Manage shortening bot deployments on the agent engine platform",
	Long: `deploy packages the shortening bot, stages it in the configured bucket
and manages its deployments on the remote agent engine platform.

Configuration comes from the environment (a .env file in the working
directory is loaded first): GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION,
GOOGLE_CLOUD_STAGING_BUCKET, AGENT_PACKAGE_NAME and AGENT_DISPLAY_NAME are
required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		cfg, err := config.LoadDeployment()
		if err != nil {
			return err
		}
		deployment = cfg
		return nil
	},
}

// Execute runs the CLI. A configuration failure is the only fatal error;
// every remote failure is already reported by the manager.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging of platform requests")
}

// newManager wires the platform client and the stager for one command run.
func newManager(cmd *cobra.Command) (*manager.Manager, error) {
	ctx := cmd.Context()
	client, err := engine.NewClient(ctx, deployment.ProjectID, deployment.Location)
	if err != nil {
		return nil, err
	}
	packager, err := engine.NewPackager(ctx, deployment.StagingBucket)
	if err != nil {
		return nil, err
	}
	return manager.New(deployment, client, packager, agent.Shortener(""), cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}
