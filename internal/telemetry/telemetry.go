// Package telemetry collects per-frame rain statistics for logs and CSV.
package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/iburimskiy/rain-visualization/internal/rain"
)

// FrameRow is one instance frame as written to CSV.
type FrameRow struct {
	Frame     uint64  `csv:"frame"`
	Instance  string  `csv:"instance"`
	DT        float64 `csv:"dt"`
	Count     int     `csv:"count"`
	Drawn     int     `csv:"drawn"`
	Wraps     int     `csv:"wraps"`
	Respawns  int     `csv:"respawns"`
	NonFinite int     `csv:"non_finite"`
}

// Summary aggregates rows since the last reset.
type Summary struct {
	Frames   int
	Drawn    int
	Wraps    int
	Respawns int
	SimTime  float64
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	avg := 0.0
	if s.Frames > 0 {
		avg = float64(s.Drawn) / float64(s.Frames)
	}
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Float64("avg_drawn", avg),
		slog.Int("wraps", s.Wraps),
		slog.Int("respawns", s.Respawns),
		slog.Float64("sim_time", s.SimTime),
	)
}

// Recorder observes scheduler frames. Rows are kept only when keepRows
// is set, so a long interactive session does not grow without bound.
type Recorder struct {
	logger   *slog.Logger
	logEvery uint64
	keepRows bool
	rows     []*FrameRow
	window   Summary
	lastLog  uint64
}

// NewRecorder logs a summary every logEvery frames (0 disables it).
func NewRecorder(logger *slog.Logger, logEvery int, keepRows bool) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if logEvery < 0 {
		logEvery = 0
	}
	return &Recorder{logger: logger, logEvery: uint64(logEvery), keepRows: keepRows}
}

// Observe has the signature of rain.FrameHook.
func (r *Recorder) Observe(frame uint64, st rain.FrameStats) {
	if r.keepRows {
		r.rows = append(r.rows, &FrameRow{
			Frame:     frame,
			Instance:  st.Key,
			DT:        st.DT,
			Count:     st.Count,
			Drawn:     st.Drawn,
			Wraps:     st.Wraps,
			Respawns:  st.Respawns,
			NonFinite: st.NonFinite,
		})
	}

	r.window.Frames++
	r.window.Drawn += st.Drawn
	r.window.Wraps += st.Wraps
	r.window.Respawns += st.Respawns
	r.window.SimTime += st.DT

	if r.logEvery > 0 && frame-r.lastLog >= r.logEvery {
		r.logger.Info("rain stats", "frame", frame, "window", r.window)
		r.window = Summary{}
		r.lastLog = frame
	}
}

// Rows returns the recorded rows.
func (r *Recorder) Rows() []*FrameRow { return r.rows }

// Window returns the summary accumulated since the last log line.
func (r *Recorder) Window() Summary { return r.window }

// WriteCSV writes the recorded rows with a header.
func (r *Recorder) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(&r.rows, w); err != nil {
		return fmt.Errorf("writing stats csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the recorded rows to path.
func (r *Recorder) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating stats file: %w", err)
	}
	defer f.Close()
	return gocsv.MarshalFile(&r.rows, f)
}
