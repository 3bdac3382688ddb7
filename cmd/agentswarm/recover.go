package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leofalp/agentswarm/core/suggest"
)

func newRecoverCmd(opts *globalOpts) *cobra.Command {
	var correlationID string

	cmd := &cobra.Command{
		Use:   "recover <reply.txt|->",
		Short: "Run the recovery pipeline on a saved model reply",
		Long: `recover reads a raw model reply and prints the recovered agent
specifications. When the reply cannot be recovered the failure report is
printed instead and the command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.service(false)
			if err != nil {
				return err
			}

			result, err := svc.Recover(cmd.Context(), correlationID, string(raw))
			if err != nil {
				var suggestErr *suggest.Error
				if errors.As(err, &suggestErr) && suggestErr.Failure != nil {
					if werr := writeResult(cmd.OutOrStdout(), suggestErr.Failure); werr != nil {
						return werr
					}
				}
				return err
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&correlationID, "id", "", "correlation id for logs and diagnostics")
	return cmd
}
