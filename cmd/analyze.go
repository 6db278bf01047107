package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fiberlab/otdr-sim/sim"
	"github.com/fiberlab/otdr-sim/sim/scenario"
)

var (
	analyzeFlags   scenarioFlags
	autorangeFlags scenarioFlags
)

// analyzeCmd prints the ground-truth event table without acquiring
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the event table for a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := analyzeFlags.load(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := analyze(s, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// autorangeCmd prints what auto mode selects for a scenario
var autorangeCmd = &cobra.Command{
	Use:   "autorange",
	Short: "Print the auto-selected range and pulse width for a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := autorangeFlags.load(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := autorange(s, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func analyze(s *scenario.Scenario, out io.Writer) error {
	in, err := s.Build(nil)
	if err != nil {
		return err
	}
	return printAnalysis(out, in.AnalysisTable())
}

func autorange(s *scenario.Scenario, out io.Writer) error {
	in, err := s.Build(nil)
	if err != nil {
		return err
	}
	sel := in.Selection()
	_, err = fmt.Fprintf(out, "fiber length %.3f km -> range %g km, pulse width %g ns\n",
		sim.TerminalDistance(in.EffectiveEvents()), sel.RangeKm, sel.PulseWidthNs)
	return err
}

func init() {
	analyzeFlags.register(analyzeCmd.Flags())
	autorangeFlags.register(autorangeCmd.Flags())
}
