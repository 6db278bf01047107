package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fiberlab/otdr-sim/sim"
	"github.com/fiberlab/otdr-sim/sim/journal"
	"github.com/fiberlab/otdr-sim/sim/report"
	"github.com/fiberlab/otdr-sim/sim/scenario"
)

var (
	runFlags scenarioFlags

	fps          float64 // Tick rate of the host clock
	maxShots     int     // Stop after this many shots (required for continuous runs)
	realtime     bool    // Pace ticks on the wall clock instead of a virtual clock
	journalLevel string  // Journal verbosity
	jsonPath     string  // JSON report output path
	csvPath      string  // CSV trace output path
	pngPath      string  // PNG plot output path
	htmlPath     string  // HTML chart output path
)

// runCmd acquires an averaged trace for a scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an acquisition and report the averaged trace",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := runFlags.load(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		opts := sessionOptions{
			FPS:          fps,
			MaxShots:     maxShots,
			Realtime:     realtime,
			JournalLevel: journal.Level(journalLevel),
			JSONPath:     jsonPath,
			CSVPath:      csvPath,
			PNGPath:      pngPath,
			HTMLPath:     htmlPath,
		}
		if err := runSession(s, opts, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// sessionOptions steer the host loop and the outputs of one run.
type sessionOptions struct {
	FPS          float64
	MaxShots     int
	Realtime     bool
	JournalLevel journal.Level
	JSONPath     string
	CSVPath      string
	PNGPath      string
	HTMLPath     string
}

func (o sessionOptions) validate(cfg sim.SimulationConfig) error {
	if o.FPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %g", o.FPS)
	}
	if o.MaxShots < 0 {
		return fmt.Errorf("--max-shots must be non-negative, got %d", o.MaxShots)
	}
	if cfg.TestDurationSec == 0 && o.MaxShots == 0 {
		return errors.New("continuous acquisition (duration 0) needs --max-shots")
	}
	if !journal.IsValidLevel(string(o.JournalLevel)) {
		return fmt.Errorf("unknown journal level %q; valid: none, transitions, ticks", o.JournalLevel)
	}
	return nil
}

// runSession builds the instrument for s, drives it to completion and writes
// the table to out plus any requested report files.
func runSession(s *scenario.Scenario, o sessionOptions, out io.Writer) error {
	if err := o.validate(s.SimConfig()); err != nil {
		return err
	}
	var j *journal.Journal
	if o.JournalLevel != "" && o.JournalLevel != journal.LevelNone {
		j = journal.New(o.JournalLevel)
	}
	in, err := s.Build(j)
	if err != nil {
		return err
	}
	logrus.Infof("Starting acquisition of %q: %s", s.Name, in.Config())

	wallStart := time.Now()
	if err := drive(in, o); err != nil {
		return err
	}
	logrus.Infof("Acquisition finished in %v wall time", time.Since(wallStart).Round(time.Millisecond))

	if err := printSession(out, in); err != nil {
		return err
	}
	if err := printAnalysis(out, in.AnalysisTable()); err != nil {
		return err
	}
	return writeReports(s, in, o)
}

// drive ticks in at o.FPS until the test completes or MaxShots shots have
// been taken, in which case the acquisition is stopped.
func drive(in *sim.Instrument, o sessionOptions) error {
	period := time.Duration(float64(time.Second) / o.FPS)
	now := time.Unix(0, 0)
	if o.Realtime {
		now = time.Now()
	}
	if err := in.Start(now); err != nil {
		return err
	}
	for shots := 0; ; {
		if o.Realtime {
			time.Sleep(period)
			now = time.Now()
		} else {
			now = now.Add(period)
		}
		state, err := in.Tick(now)
		if err != nil {
			return err
		}
		shots++
		if state != sim.StateRunning {
			return nil
		}
		if o.MaxShots > 0 && shots >= o.MaxShots {
			return in.Stop(now)
		}
	}
}

func writeReports(s *scenario.Scenario, in *sim.Instrument, o sessionOptions) error {
	trace, err := in.DisplayTrace()
	if err != nil {
		return err
	}
	if o.JSONPath != "" {
		r, err := report.New(s.Name, s.Seed, in)
		if err != nil {
			return err
		}
		if err := writeFile(o.JSONPath, func(w io.Writer) error { return report.WriteJSON(w, r) }); err != nil {
			return err
		}
	}
	if o.CSVPath != "" {
		if err := writeFile(o.CSVPath, func(w io.Writer) error { return report.WriteCSV(w, trace) }); err != nil {
			return err
		}
	}
	if o.PNGPath != "" {
		if err := report.SavePNG(o.PNGPath, trace, in.AnalysisTable()); err != nil {
			return err
		}
		logrus.Infof("Plot written to %s", o.PNGPath)
	}
	if o.HTMLPath != "" {
		if err := writeFile(o.HTMLPath, func(w io.Writer) error { return report.WriteHTML(w, trace, in.AnalysisTable()) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.Infof("Report written to %s", path)
	return nil
}

func init() {
	runFlags.register(runCmd.Flags())

	runCmd.Flags().Float64Var(&fps, "fps", 60, "Ticks per second of the host clock")
	runCmd.Flags().IntVar(&maxShots, "max-shots", 0, "Stop after this many shots (required when --duration is 0)")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "Pace ticks on the wall clock")
	runCmd.Flags().StringVar(&journalLevel, "journal", "none", "Journal level (none, transitions, ticks)")

	runCmd.Flags().StringVar(&jsonPath, "json", "", "Write a JSON report to this path")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the averaged trace as CSV to this path")
	runCmd.Flags().StringVar(&pngPath, "png", "", "Write a trace plot (PNG) to this path")
	runCmd.Flags().StringVar(&htmlPath, "html", "", "Write an interactive trace chart (HTML) to this path")
}
