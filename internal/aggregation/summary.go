package aggregation

import (
	"errors"
	"fmt"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
)

// percentileAccuracy is the relative accuracy of the quantile sketch.
const percentileAccuracy = 0.01

var ErrEmptyDataset = errors.New("dataset is empty")

// Summary holds the dataset-wide temperature reductions.
// Median and P95 are sketch estimates within percentileAccuracy.
type Summary struct {
	Count    int
	MeanTemp float64
	MaxTemp  float64
	MinTemp  float64
	Median   float64
	P95      float64
}

// Summarize reduces all readings. An empty dataset returns ErrEmptyDataset
// so callers short-circuit before presenting anything.
func Summarize(ds *dataset.Dataset) (Summary, error) {
	rs := readings(ds)
	if len(rs) == 0 {
		return Summary{}, ErrEmptyDataset
	}

	sketch, err := ddsketch.NewDefaultDDSketch(percentileAccuracy)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create sketch: %w", err)
	}

	s := Summary{
		Count:   len(rs),
		MaxTemp: rs[0].Temperature,
		MinTemp: rs[0].Temperature,
	}

	var sum float64
	for _, r := range rs {
		sum += r.Temperature
		s.MaxTemp = max(s.MaxTemp, r.Temperature)
		s.MinTemp = min(s.MinTemp, r.Temperature)
		if err := sketch.Add(r.Temperature); err != nil {
			return Summary{}, fmt.Errorf("failed to add %v to sketch: %w", r.Temperature, err)
		}
	}
	s.MeanTemp = sum / float64(len(rs))

	if s.Median, err = sketch.GetValueAtQuantile(0.5); err != nil {
		return Summary{}, fmt.Errorf("failed to read median: %w", err)
	}
	if s.P95, err = sketch.GetValueAtQuantile(0.95); err != nil {
		return Summary{}, fmt.Errorf("failed to read p95: %w", err)
	}

	return s, nil
}
