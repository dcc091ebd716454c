package cli

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/oliverbestmann/bykenet/internal/scenario"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Profile    string
	ProfileDir string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario and print every event",
		Args:  cobra.ExactArgs(1),

		SilenceUsage: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "write a profile while running (cpu|mem)")
	cmd.Flags().StringVar(&opts.ProfileDir, "profile-dir", ".", "directory to write profiles to")

	return cmd
}

func runScenario(rootOpts *RootOptions, opts *RunOptions, path string, cmd *cobra.Command) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	if !rootOpts.Verbose {
		level, _ := s.Config.Level()
		rootOpts.Level.Set(level)
	}

	switch opts.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.ProfileDir), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(opts.ProfileDir), profile.Quiet).Stop()
	default:
		return fmt.Errorf("invalid profile %q: must be cpu or mem", opts.Profile)
	}

	return scenario.NewRunner(s, cmd.OutOrStdout()).Run()
}
