package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fiberlab/otdr-sim/sim/scenario"
)

// scenarioCmd writes a built-in scenario as YAML, ready to edit and pass to --scenario
var scenarioCmd = &cobra.Command{
	Use:       "scenario <preset>",
	Short:     "Print a built-in scenario as YAML",
	Args:      cobra.ExactArgs(1),
	ValidArgs: scenario.PresetNames(),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := scenario.Preset(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := s.Write(os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}
