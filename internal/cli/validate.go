package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oliverbestmann/bykenet/internal/scenario"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario file without running it",
		Args:  cobra.ExactArgs(1),

		SilenceUsage: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"scenario valid: %d components, %d entities, %d peers, %d steps\n",
				len(s.Components), len(s.Entities), len(s.Peers), len(s.Steps))

			return err
		},
	}
}
