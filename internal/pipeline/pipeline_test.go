package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smukkama/iot-temp-monitor/internal/aggregation"
	"github.com/smukkama/iot-temp-monitor/internal/source"
	"github.com/stretchr/testify/require"
)

type failingDownloader struct{}

func (failingDownloader) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("storage unreachable")
}

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "IOT-temp.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Scenario(t *testing.T) {
	path := writeFile(t, "noted_date,temp,humidity\n"+
		"2020-01-01 10:00:00,25.0,60\n"+
		"bad,NaN,70\n"+
		"2020-01-01 11:00:00,26.0,61\n")

	p := New(source.NewResolver(nil, "IOT-temp.csv", path, nil), fixedClock, nil)
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, report.RunID)
	require.Equal(t, source.OriginLocal, report.Origin)
	require.Equal(t, 2, report.Dataset.Len())
	require.Equal(t, "2024-06-01 10:00:00", report.Dataset.Readings[0].Timestamp.Format("2006-01-02 15:04:05"))
	require.Equal(t, "2024-06-01 11:00:00", report.Dataset.Readings[1].Timestamp.Format("2006-01-02 15:04:05"))

	require.Equal(t, 2, report.Summary.Count)
	require.InDelta(t, 25.5, report.Summary.MeanTemp, 1e-9)
	require.Equal(t, []aggregation.HourlyCount{{Hour: 10, Count: 1}, {Hour: 11, Count: 1}}, report.Hourly)
	require.Len(t, report.Daily, 1)
	require.Equal(t, 26.0, report.Daily[0].MaxTemp)
	require.Equal(t, 25.0, report.Daily[0].MinTemp)
}

func TestRun_RemoteFailureStillReadsLocal(t *testing.T) {
	path := writeFile(t, "noted_date,temp\n2024-06-01 10:00:00,20\n")

	p := New(source.NewResolver(failingDownloader{}, "IOT-temp.csv", path, nil), fixedClock, nil)
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, source.OriginLocal, report.Origin)
	require.Len(t, report.Advisories, 1)
	require.Equal(t, 1, report.Dataset.Len())
}

func TestRun_UnavailableIsNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	p := New(source.NewResolver(nil, "IOT-temp.csv", path, nil), fixedClock, nil)
	report, err := p.Run(context.Background())

	require.ErrorIs(t, err, ErrNoData)
	require.ErrorIs(t, err, source.ErrDataUnavailable)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.NotNil(t, report)
	require.Nil(t, report.Dataset)
}

func TestRun_HeaderOnlyIsNoData(t *testing.T) {
	path := writeFile(t, "noted_date,temp,humidity\n")

	p := New(source.NewResolver(nil, "IOT-temp.csv", path, nil), fixedClock, nil)
	report, err := p.Run(context.Background())

	require.ErrorIs(t, err, ErrNoData)
	require.True(t, report.Dataset.Empty())
	require.Empty(t, report.Hourly)
}

func TestRun_RecomputesEveryCall(t *testing.T) {
	path := writeFile(t, "noted_date,temp\n2024-06-01 10:00:00,20\n")
	p := New(source.NewResolver(nil, "IOT-temp.csv", path, nil), fixedClock, nil)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.Count)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2024-06-01 12:00:00,22\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, second.Summary.Count)
	require.NotEqual(t, first.RunID, second.RunID)
}
