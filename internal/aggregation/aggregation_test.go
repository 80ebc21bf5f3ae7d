package aggregation

import (
	"testing"
	"time"

	"github.com/guregu/null"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
	"github.com/stretchr/testify/require"
)

func reading(ts string, temp float64, humidity null.Float) dataset.Reading {
	t, err := time.ParseInLocation(dataset.TimestampLayout, ts, time.UTC)
	if err != nil {
		panic(err)
	}
	return dataset.Reading{Timestamp: t, Temperature: temp, Humidity: humidity}
}

func sampleDataset() *dataset.Dataset {
	return &dataset.Dataset{Readings: []dataset.Reading{
		reading("2024-06-01 09:10:00", 21.0, null.FloatFrom(50)),
		reading("2024-06-01 09:40:00", 23.5, null.Float{}),
		reading("2024-06-01 17:00:00", 19.0, null.FloatFrom(58)),
		reading("2024-06-02 09:05:00", 25.0, null.Float{}),
		reading("2024-06-02 23:59:59", 18.5, null.Float{}),
	}}
}

func TestHourlyAggregator_SparseHours(t *testing.T) {
	got := NewHourlyAggregator().Aggregate(sampleDataset())

	require.Equal(t, []HourlyCount{
		{Hour: 9, Count: 3},
		{Hour: 17, Count: 1},
		{Hour: 23, Count: 1},
	}, got)
}

func TestHourlyAggregator_Empty(t *testing.T) {
	require.Empty(t, NewHourlyAggregator().Aggregate(&dataset.Dataset{}))
	require.Empty(t, NewHourlyAggregator().Aggregate(nil))
}

func TestDailyAggregator_Extremes(t *testing.T) {
	got := NewDailyAggregator().Aggregate(sampleDataset())
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), first.Date)
	require.Equal(t, 23.5, first.MaxTemp)
	require.Equal(t, 19.0, first.MinTemp)
	require.Equal(t, null.FloatFrom(58), first.MaxHumidity)
	require.Equal(t, null.FloatFrom(50), first.MinHumidity)
	require.Equal(t, 3, first.Readings)

	second := got[1]
	require.Equal(t, time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC), second.Date)
	require.Equal(t, 25.0, second.MaxTemp)
	require.Equal(t, 18.5, second.MinTemp)
	require.False(t, second.MaxHumidity.Valid)
	require.False(t, second.MinHumidity.Valid)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(sampleDataset())
	require.NoError(t, err)

	require.Equal(t, 5, s.Count)
	require.InDelta(t, 21.4, s.MeanTemp, 1e-9)
	require.Equal(t, 25.0, s.MaxTemp)
	require.Equal(t, 18.5, s.MinTemp)
}

func TestSummarize_Percentiles(t *testing.T) {
	ds := &dataset.Dataset{}
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 100; i++ {
		ds.Readings = append(ds.Readings, dataset.Reading{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Temperature: float64(i),
		})
	}

	s, err := Summarize(ds)
	require.NoError(t, err)
	require.InDelta(t, 50, s.Median, 1.5)
	require.InDelta(t, 95, s.P95, 1.5)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(&dataset.Dataset{})
	require.ErrorIs(t, err, ErrEmptyDataset)
}
