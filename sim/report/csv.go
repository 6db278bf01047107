package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fiberlab/otdr-sim/sim"
)

// WriteCSV writes the trace as distance_km,level_db rows under a header.
func WriteCSV(w io.Writer, trace []sim.TracePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"distance_km", "level_db"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range trace {
		row := []string{
			strconv.FormatFloat(p.X, 'f', 4, 64),
			strconv.FormatFloat(p.Y, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
