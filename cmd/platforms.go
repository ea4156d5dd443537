package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/mediagrab/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var platformsCmd = &cobra.Command{
	Use:              "platforms",
	Short:            "List supported platforms and their status",
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecutePlatformsCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(platformsCmd)
}
