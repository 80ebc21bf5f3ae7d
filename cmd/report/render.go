package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smukkama/iot-temp-monitor/internal/pipeline"
)

// Render prints a pipeline report as plain text.
func Render(w io.Writer, report *pipeline.Report, runErr error) {
	if report != nil {
		for _, a := range report.Advisories {
			fmt.Fprintf(w, "Note: %s\n", a)
		}
	}

	switch {
	case errors.Is(runErr, pipeline.ErrNoData):
		fmt.Fprintln(w, "No data available to display at the moment.")
		return
	case runErr != nil:
		fmt.Fprintf(w, "Report failed: %v\n", runErr)
		return
	}

	s := report.Summary
	fmt.Fprintf(w, "\n=== IoT Temperature Monitoring (%s data) ===\n", report.Origin)
	fmt.Fprintf(w, "Mean temperature:    %.1f °C\n", s.MeanTemp)
	fmt.Fprintf(w, "Maximum temperature: %.1f °C\n", s.MaxTemp)
	fmt.Fprintf(w, "Minimum temperature: %.1f °C\n", s.MinTemp)
	fmt.Fprintf(w, "Median / p95:        %.1f / %.1f °C\n", s.Median, s.P95)
	fmt.Fprintf(w, "Total readings:      %d\n", s.Count)

	fmt.Fprintln(w, "\n--- Readings per hour ---")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOUR\tCOUNT")
	for _, h := range report.Hourly {
		fmt.Fprintf(tw, "%02d\t%d\n", h.Hour, h.Count)
	}
	tw.Flush()

	fmt.Fprintln(w, "\n--- Daily extremes ---")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMAX °C\tMIN °C\tREADINGS")
	for _, d := range report.Daily {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\n", d.Date.Format("2006-01-02"), d.MaxTemp, d.MinTemp, d.Readings)
	}
	tw.Flush()
}
