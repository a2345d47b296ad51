// Command ftpd runs the FTP control-channel server and decodes captured
// control streams.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ftpd",
		Short: "FTP control-channel server",
		Long: `ftpd accepts FTP control connections, decodes their command lines and
answers with fixed RFC 959 replies. It has no data channel.

The decode subcommand runs the same decoder over a captured control stream.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newDecodeCmd())
	return root
}
