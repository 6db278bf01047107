package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fiberlab/otdr-sim/sim"
)

// printAnalysis writes the event table the way the instrument panel shows it.
func printAnalysis(w io.Writer, records []sim.AnalysisRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tType\tLocation (km)\tReflectance (dB)\tLoss (dB)\tCumulative (dB)\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%s\t%.2f\t\n",
			r.Index, r.Type, r.LocationKm, r.ReflectanceDisplay(), r.LossDisplay(), r.CumulativeLossDb)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total loss: %.2f dB\n", sim.TotalLossDb(records))
	return err
}

// printSession writes the settings, acquisition status and trace statistics.
func printSession(w io.Writer, in *sim.Instrument) error {
	cfg := in.Config()
	phys := in.Physics()
	st := in.Status()
	fmt.Fprintf(w, "=== Acquisition ===\n")
	fmt.Fprintf(w, "Settings       : %s\n", cfg)
	fmt.Fprintf(w, "Pulse length   : %.1f m (event dead zone %.1f m)\n", phys.PulseLengthKm*1000, phys.EventDeadZoneKm*1000)
	fmt.Fprintf(w, "Resolution     : %.2f m/sample\n", phys.SamplingResolutionKm*1000)
	fmt.Fprintf(w, "State          : %s after %.2fs, %d shots\n", st.State, st.ElapsedSec, st.Shots)
	if c := in.Cut(); c != nil {
		fmt.Fprintf(w, "Cut            : %.3f km\n", c.DistanceKm)
	}
	ts, err := in.Stats()
	if err != nil {
		return err
	}
	if ts.NoiseSamples > 0 {
		fmt.Fprintf(w, "Noise region   : mean %.2f dB, stddev %.2f dB over %d samples\n", ts.NoiseMeanDb, ts.NoiseStdDevDb, ts.NoiseSamples)
		fmt.Fprintf(w, "Dynamic range  : %.2f dB\n", ts.DynamicRangeDb)
	}
	_, err = fmt.Fprintln(w)
	return err
}
