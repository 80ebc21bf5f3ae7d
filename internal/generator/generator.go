// Package generator simulates a live sensor by appending synthetic
// readings to the persisted data file on a fixed cadence.
package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
	"github.com/smukkama/iot-temp-monitor/internal/logging"
	"github.com/smukkama/iot-temp-monitor/internal/timer"
)

const (
	DefaultInterval = 60 * time.Second

	baseTemperature   = 20.0
	temperatureJitter = 1.0
	baseHumidity      = 55.0
	humidityJitter    = 5.0

	taskID = "generate-reading"
)

// Header is the row written to a fresh data file.
var Header = []string{dataset.ColumnTimestamp, dataset.ColumnTemperature, dataset.ColumnHumidity}

// Sample is one generated reading as written to the file.
type Sample struct {
	Timestamp   time.Time
	Temperature float64
	Humidity    float64
}

// Options tunes a Generator. Zero values fall back to production defaults.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Rand     *rand.Rand
	Console  io.Writer
	Logger   *slog.Logger
}

// Generator appends synthetic readings to one CSV file.
type Generator struct {
	path     string
	interval time.Duration
	now      func() time.Time
	rnd      *rand.Rand
	console  io.Writer
	log      *slog.Logger
}

// New creates a generator for the file at path.
func New(path string, opts Options) *Generator {
	g := &Generator{
		path:     path,
		interval: opts.Interval,
		now:      opts.Now,
		rnd:      opts.Rand,
		console:  opts.Console,
		log:      opts.Logger,
	}
	if g.interval <= 0 {
		g.interval = DefaultInterval
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.console == nil {
		g.console = os.Stdout
	}
	if g.log == nil {
		g.log = logging.Discard()
	}
	return g
}

// Bootstrap makes sure the file starts with the header row. A file whose
// first line already names the timestamp column is left untouched;
// anything else is replaced by a header-only file.
func (g *Generator) Bootstrap() error {
	ok, err := hasHeader(g.path)
	if err != nil {
		return err
	}
	if ok {
		g.log.Debug("data file already initialized", "path", g.path)
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	w.Flush()

	if err := os.WriteFile(g.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", g.path, err)
	}
	g.log.Info("initialized data file", "path", g.path)
	return nil
}

func hasHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.Contains(line, dataset.ColumnTimestamp), nil
}

// Generate appends one synthetic reading and echoes it to the console.
// A write failure is returned as is; there is no retry.
func (g *Generator) Generate() (Sample, error) {
	s := Sample{
		Timestamp:   g.now().Truncate(time.Second),
		Temperature: round2(baseTemperature + g.uniform(-temperatureJitter, temperatureJitter)),
		Humidity:    round2(baseHumidity + g.uniform(-humidityJitter, humidityJitter)),
	}
	ts := s.Timestamp.Format(dataset.TimestampLayout)
	temp := formatNumber(s.Temperature)
	hum := formatNumber(s.Humidity)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{ts, temp, hum}); err != nil {
		return Sample{}, fmt.Errorf("failed to encode reading: %w", err)
	}
	w.Flush()

	if err := appendLine(g.path, buf.Bytes()); err != nil {
		return Sample{}, err
	}

	fmt.Fprintf(g.console, "%s → Temp=%s°C | Hum=%s%%\n", ts, temp, hum)
	g.log.Debug("appended reading", "timestamp", ts, "temp", s.Temperature, "humidity", s.Humidity)
	return s, nil
}

// appendLine writes the encoded row with a single write call.
func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Run bootstraps the file and then generates a reading every interval,
// measured from the end of the previous append, until ctx is cancelled.
// It returns nil on cancellation and the first write error otherwise.
func (g *Generator) Run(ctx context.Context, tm *timer.TimerManager) error {
	if err := g.Bootstrap(); err != nil {
		return err
	}

	log := g.log.With("session_id", uuid.NewString())
	log.Info("generator started", "path", g.path, "interval", g.interval)

	errCh := make(chan error, 1)

	// mu serializes ticks with shutdown; once stopped is set no tick
	// generates or reschedules.
	var (
		mu      sync.Mutex
		stopped bool
	)

	var tick func()
	tick = func() {
		mu.Lock()
		defer mu.Unlock()

		if stopped || ctx.Err() != nil {
			return
		}
		if _, err := g.Generate(); err != nil {
			errCh <- err
			return
		}
		if err := tm.Schedule(taskID, time.Now().Add(g.interval), tick); err != nil {
			errCh <- fmt.Errorf("failed to schedule next reading: %w", err)
		}
	}

	if err := tm.Schedule(taskID, time.Now(), tick); err != nil {
		return fmt.Errorf("failed to schedule first reading: %w", err)
	}

	stop := func() {
		mu.Lock()
		stopped = true
		tm.Cancel(taskID)
		mu.Unlock()
	}

	select {
	case <-ctx.Done():
		stop()
		log.Info("generator stopped")
		return nil
	case err := <-errCh:
		stop()
		log.Error("generator failed", "error", err)
		return err
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rnd.Float64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatNumber prints the shortest representation, keeping a decimal
// point on whole numbers.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
