package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOpts struct {
	envFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "agentswarm",
		Short: "Suggest AI agents for an empire and recover structured model replies",
		Long: `agentswarm sends an empire description to Claude and turns the reply
into validated agent specifications, repairing malformed or truncated JSON
on the way.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "compact, pretty or json")

	root.AddCommand(
		newServeCmd(opts),
		newSuggestCmd(opts),
		newRecoverCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("agentswarm " + version)
		},
	}
}
