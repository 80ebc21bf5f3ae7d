package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/iot-temp-monitor/internal/aggregation"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
	"github.com/smukkama/iot-temp-monitor/internal/logging"
	"github.com/smukkama/iot-temp-monitor/internal/source"
)

// ErrNoData means there is nothing to show: the source was unavailable or
// every row was dropped during cleaning.
var ErrNoData = errors.New("no data available")

// Resolver is the raw-table source of a pipeline run.
type Resolver interface {
	Resolve(ctx context.Context) (*source.Resolution, error)
}

// Report is everything one pipeline run produces for the presentation
// layer.
type Report struct {
	RunID      string
	Origin     source.Origin
	Advisories []source.Advisory
	Dataset    *dataset.Dataset
	Summary    aggregation.Summary
	Hourly     []aggregation.HourlyCount
	Daily      []aggregation.DailySummary
}

// Pipeline runs resolve, normalize and aggregate from scratch on every call.
type Pipeline struct {
	resolver Resolver
	hourly   *aggregation.HourlyAggregator
	daily    *aggregation.DailyAggregator
	now      func() time.Time
	log      *slog.Logger
}

// New creates a pipeline. A nil clock uses time.Now.
func New(resolver Resolver, now func() time.Time, logger *slog.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		resolver: resolver,
		hourly:   aggregation.NewHourlyAggregator(),
		daily:    aggregation.NewDailyAggregator(),
		now:      now,
		log:      logger,
	}
}

// Run executes one invocation. Unavailable or empty data is reported as
// an error wrapping ErrNoData; the returned Report is still populated with
// whatever was resolved so callers can show advisories.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := p.log.With("run_id", report.RunID)

	res, err := p.resolver.Resolve(ctx)
	if err != nil {
		log.Warn("no data source available", "error", err)
		return report, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	report.Origin = res.Origin
	report.Advisories = res.Advisories

	report.Dataset = dataset.Normalize(res.Table, p.now())
	log.Info("dataset normalized",
		"origin", res.Origin,
		"rows", res.Table.Len(),
		"readings", report.Dataset.Len(),
		"dropped", report.Dataset.Dropped,
		"offset", report.Dataset.Offset,
	)

	if report.Dataset.Empty() {
		return report, fmt.Errorf("%w: dataset is empty", ErrNoData)
	}

	summary, err := aggregation.Summarize(report.Dataset)
	if err != nil {
		return report, fmt.Errorf("failed to summarize dataset: %w", err)
	}
	report.Summary = summary
	report.Hourly = p.hourly.Aggregate(report.Dataset)
	report.Daily = p.daily.Aggregate(report.Dataset)

	return report, nil
}
