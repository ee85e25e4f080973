// Package app provides the commands of the stormpath-server binary.
package app

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stormpath-server",
		Short: "Proxy the identity API login flows for browsers",
		Long: `stormpath-server exposes the identity API endpoints (/me, /oauth/token,
/logout, /register, /forgot, /change, /verify) to browsers and forwards
them with server credentials. Configuration comes from STORMPATH_SERVER_*
environment variables and an optional .env file.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	serve := newServeCmd()
	root.AddCommand(serve)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}
