package aggregation

import (
	"slices"
	"time"

	"github.com/guregu/null"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
)

// DailySummary holds the temperature extremes of one calendar date.
// Humidity extremes are null when no reading that day carried humidity.
type DailySummary struct {
	Date        time.Time
	MaxTemp     float64
	MinTemp     float64
	MaxHumidity null.Float
	MinHumidity null.Float
	Readings    int
}

// DailyAggregator performs daily aggregation
type DailyAggregator struct{}

// NewDailyAggregator creates a new daily aggregator
func NewDailyAggregator() *DailyAggregator {
	return &DailyAggregator{}
}

// Aggregate groups readings by calendar date, ascending by date.
func (d *DailyAggregator) Aggregate(ds *dataset.Dataset) []DailySummary {
	byDate := make(map[time.Time]*DailySummary)

	for _, r := range readings(ds) {
		date := dataset.Midnight(r.Timestamp)

		day, ok := byDate[date]
		if !ok {
			day = &DailySummary{
				Date:    date,
				MaxTemp: r.Temperature,
				MinTemp: r.Temperature,
			}
			byDate[date] = day
		}

		day.Readings++
		day.MaxTemp = max(day.MaxTemp, r.Temperature)
		day.MinTemp = min(day.MinTemp, r.Temperature)

		if r.Humidity.Valid {
			h := r.Humidity.Float64
			if !day.MaxHumidity.Valid || h > day.MaxHumidity.Float64 {
				day.MaxHumidity = null.FloatFrom(h)
			}
			if !day.MinHumidity.Valid || h < day.MinHumidity.Float64 {
				day.MinHumidity = null.FloatFrom(h)
			}
		}
	}

	result := make([]DailySummary, 0, len(byDate))
	for _, day := range byDate {
		result = append(result, *day)
	}
	slices.SortFunc(result, func(a, b DailySummary) int {
		return a.Date.Compare(b.Date)
	})
	return result
}
