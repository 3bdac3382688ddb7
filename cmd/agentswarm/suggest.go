package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/agentswarm/core/agentspec"
	"github.com/leofalp/agentswarm/core/suggest"
)

func newSuggestCmd(opts *globalOpts) *cobra.Command {
	var extended bool

	cmd := &cobra.Command{
		Use:   "suggest <description.json|->",
		Short: "Suggest agents for the empire described in a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.service(true)
			if err != nil {
				return err
			}

			var result *suggest.Result
			if extended {
				var description agentspec.ExtendedEmpireDescription
				if err := json.Unmarshal(data, &description); err != nil {
					return fmt.Errorf("invalid description: %w", err)
				}
				result, err = svc.SuggestAgentsExtended(cmd.Context(), description)
			} else {
				var description agentspec.EmpireDescription
				if err := json.Unmarshal(data, &description); err != nil {
					return fmt.Errorf("invalid description: %w", err)
				}
				result, err = svc.SuggestAgents(cmd.Context(), description)
			}
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&extended, "extended", false, "read an extended empire description")
	return cmd
}

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
