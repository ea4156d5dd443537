package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/mediagrab/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage cookies for platforms that need a logged-in session.

Use 'auth login <platform>' to log in via browser and export the cookies for yt-dlp.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLoginCmd = &cobra.Command{
		Use:   "login <platform>",
		Short: "Log in to a platform in a browser and export its cookies",
		Long: `Opens a browser window at the platform's login page.

The login process:
1. Log in as usual in the opened window
2. Check that the site shows you as logged in
3. Close the browser window

The platform cookies are then written as a Netscape cookie file under
<output_path>/.cookies/<platform>.txt and recorded in the configuration file,
so later downloads from that platform pass them to yt-dlp automatically.

Example:
mediagrab auth login instagram`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig, args[0])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	// Add login subcommand to auth command.
	authCmd.AddCommand(authLoginCmd)

	// Add auth command to root command.
	rootCmd.AddCommand(authCmd)
}
