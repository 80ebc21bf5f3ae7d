package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/smukkama/iot-temp-monitor/internal/blobstore"
	"github.com/smukkama/iot-temp-monitor/internal/dataset"
	"github.com/smukkama/iot-temp-monitor/internal/logging"
)

// Origin names where a resolved table came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// ErrDataUnavailable means neither the remote store nor the local file
// produced a table. Callers treat it as "no data".
var ErrDataUnavailable = errors.New("data unavailable")

// Advisory is a non-fatal note raised while resolving, such as a failed
// remote fetch that was recovered by reading the local file.
type Advisory struct {
	Origin  Origin
	Message string
	Err     error
}

func (a Advisory) String() string {
	if a.Err == nil {
		return a.Message
	}
	return fmt.Sprintf("%s: %v", a.Message, a.Err)
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Table      *dataset.RawTable
	Origin     Origin
	Advisories []Advisory
}

// Resolver obtains the raw table, preferring the remote store when one is
// configured.
type Resolver struct {
	remote    blobstore.Downloader
	objectKey string
	localPath string
	log       *slog.Logger
}

// NewResolver creates a resolver. A nil remote disables the remote path.
func NewResolver(remote blobstore.Downloader, objectKey, localPath string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{
		remote:    remote,
		objectKey: objectKey,
		localPath: localPath,
		log:       logger,
	}
}

// attempt is one step of the fallback chain. A nil table with a nil error
// means the step was skipped.
type attempt struct {
	origin Origin
	run    func(ctx context.Context) (*dataset.RawTable, error)
}

// Resolve walks remote then local. Only a local failure ends the chain with
// an error, wrapped in ErrDataUnavailable.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	res := &Resolution{}

	chain := []attempt{
		{origin: OriginRemote, run: r.fetchRemote},
		{origin: OriginLocal, run: r.readLocal},
	}

	for _, step := range chain {
		table, err := step.run(ctx)
		if err == nil && table != nil {
			res.Table = table
			res.Origin = step.origin
			return res, nil
		}

		if step.origin == OriginLocal {
			r.log.Error("failed to load local data", "path", r.localPath, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}

		advisory := Advisory{Origin: step.origin, Err: err}
		if err == nil {
			advisory.Message = "remote store not configured, using local file " + r.localPath
			r.log.Info(advisory.Message)
		} else {
			advisory.Message = "remote fetch failed, falling back to local file " + r.localPath
			r.log.Warn(advisory.Message, "key", r.objectKey, "error", err)
		}
		res.Advisories = append(res.Advisories, advisory)
	}

	// unreachable: the local step always returns
	return nil, ErrDataUnavailable
}

func (r *Resolver) fetchRemote(ctx context.Context) (*dataset.RawTable, error) {
	if r.remote == nil {
		return nil, nil
	}

	data, err := r.remote.Download(ctx, r.objectKey)
	if err != nil {
		return nil, err
	}

	// parse before persisting so a bad download never replaces a good file
	table, err := dataset.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse downloaded object: %w", err)
	}

	if err := writeFileAtomic(r.localPath, data); err != nil {
		return nil, fmt.Errorf("failed to persist downloaded object: %w", err)
	}

	r.log.Debug("loaded remote data", "key", r.objectKey, "bytes", len(data), "rows", table.Len())
	return table, nil
}

func (r *Resolver) readLocal(ctx context.Context) (*dataset.RawTable, error) {
	data, err := os.ReadFile(r.localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.localPath, err)
	}

	table, err := dataset.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.localPath, err)
	}

	r.log.Debug("loaded local data", "path", r.localPath, "rows", table.Len())
	return table, nil
}

// writeFileAtomic replaces path with data through a rename so a concurrent
// reader never sees a half-written download.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
