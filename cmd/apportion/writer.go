package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/k-donn/go-apportion/hh"
	"github.com/k-donn/go-apportion/stats"
)

// stepWriter renders allocation snapshots to the command output.
type stepWriter interface {
	WriteStep(*hh.StepSnapshot) error
	Close() error
}

var stepWriters = map[string]func(io.Writer) stepWriter{
	"text":  newTextWriter,
	"json":  newJSONWriter,
	"jsonl": newJSONLWriter,
}

func newStepWriter(format string, out io.Writer) (stepWriter, error) {
	ctor, ok := stepWriters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return ctor(out), nil
}

type textWriter struct {
	out io.Writer
}

func newTextWriter(out io.Writer) stepWriter { return &textWriter{out: out} }

func (w *textWriter) WriteStep(snapshot *hh.StepSnapshot) error {
	summary, err := stats.Summarize(snapshot)
	if err != nil {
		return err
	}
	selected := snapshot.Entities[snapshot.Selected]
	_, err = fmt.Fprintf(w.out, "Seat# %d State: %s (%s seats)\nMean: %s  Std. Dev. %s  Range: %s  Geo. Mean: %s\n",
		snapshot.Step+1,
		selected.Name,
		humanize.Comma(int64(selected.Seats)),
		commaFloat(summary.Mean),
		commaFloat(summary.StdDev),
		commaFloat(summary.Range),
		commaFloat(summary.GeometricMean),
	)
	return err
}

func (w *textWriter) Close() error { return nil }

func commaFloat(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// stepRecord pairs a snapshot with the summary statistics of its populations
// per seat.
type stepRecord struct {
	Snapshot *hh.StepSnapshot
	Summary  stats.Summary
}

type jsonWriter struct {
	out   io.Writer
	steps []stepRecord
}

func newJSONWriter(out io.Writer) stepWriter { return &jsonWriter{out: out} }

func (w *jsonWriter) WriteStep(snapshot *hh.StepSnapshot) error {
	summary, err := stats.Summarize(snapshot)
	if err != nil {
		return err
	}
	w.steps = append(w.steps, stepRecord{Snapshot: snapshot, Summary: summary})
	return nil
}

// Close writes the collected steps as a single JSON document.
func (w *jsonWriter) Close() error {
	encoder := json.NewEncoder(w.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(w.steps)
}

type jsonlWriter struct {
	encoder *json.Encoder
}

func newJSONLWriter(out io.Writer) stepWriter { return &jsonlWriter{encoder: json.NewEncoder(out)} }

func (w *jsonlWriter) WriteStep(snapshot *hh.StepSnapshot) error {
	summary, err := stats.Summarize(snapshot)
	if err != nil {
		return err
	}
	return w.encoder.Encode(stepRecord{Snapshot: snapshot, Summary: summary})
}

func (w *jsonlWriter) Close() error { return nil }
