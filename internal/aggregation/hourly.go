package aggregation

import (
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
)

// HourlyCount is the number of readings taken in one hour of the day.
type HourlyCount struct {
	Hour  int
	Count int
}

// HourlyAggregator counts readings per hour of day
type HourlyAggregator struct{}

// NewHourlyAggregator creates a new hourly aggregator
func NewHourlyAggregator() *HourlyAggregator {
	return &HourlyAggregator{}
}

// Aggregate groups readings by the hour component of their timestamp.
// Only hours with at least one reading are returned, ascending by hour.
func (h *HourlyAggregator) Aggregate(ds *dataset.Dataset) []HourlyCount {
	var counts [24]int
	for _, r := range readings(ds) {
		counts[r.Timestamp.Hour()]++
	}

	var result []HourlyCount
	for hour, n := range counts {
		if n > 0 {
			result = append(result, HourlyCount{Hour: hour, Count: n})
		}
	}
	return result
}

func readings(ds *dataset.Dataset) []dataset.Reading {
	if ds == nil {
		return nil
	}
	return ds.Readings
}
