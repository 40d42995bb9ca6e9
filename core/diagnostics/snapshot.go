package diagnostics

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"revision-validator/core/reconcile"
	"revision-validator/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TimestampLayout is the timestamp format embedded in snapshot names.
const TimestampLayout = "20060102_150405"

var unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Screenshotter captures the current browser view as PNG.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Snapshotter saves screenshots of failed work items under Dir and, when Store
// is set, uploads a copy to Bucket.
type Snapshotter struct {
	Source Screenshotter
	Dir    string
	Store  storage.Client
	Bucket string
	Prefix string
	Logger *zap.Logger

	now func() time.Time
}

var _ reconcile.Snapshotter = (*Snapshotter)(nil)

// NewSnapshotter creates a Snapshotter writing to dir. Uploads stay disabled
// until WithUpload is called.
func NewSnapshotter(source Screenshotter, dir string, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter{Source: source, Dir: dir, Logger: logger, now: time.Now}
}

// WithUpload enables uploads of every snapshot to bucket under prefix.
func (s *Snapshotter) WithUpload(store storage.Client, bucket, prefix string) *Snapshotter {
	s.Store, s.Bucket, s.Prefix = store, bucket, prefix
	return s
}

// FileName returns "erro_<phase>_<id>_<timestamp>.png" with characters that are
// unsafe in file names removed from id.
func FileName(phase reconcile.Phase, id string, at time.Time) string {
	return "erro_" + string(phase) + "_" + unsafeChars.ReplaceAllString(id, "") + "_" + at.Format(TimestampLayout) + ".png"
}

// Capture saves a screenshot for the failing item and returns its local path.
// A failed upload is logged; the local file is still the result.
func (s *Snapshotter) Capture(ctx context.Context, phase reconcile.Phase, id string) (string, error) {
	img, err := s.Source.Screenshot(ctx)
	if err != nil {
		return "", eris.Wrap(err, "failed to take screenshot")
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "failed to create %s", s.Dir)
	}

	name := FileName(phase, id, s.now())
	local := filepath.Join(s.Dir, name)
	if err := os.WriteFile(local, img, 0o644); err != nil {
		return "", eris.Wrapf(err, "failed to write %s", local)
	}

	if s.Store != nil {
		object := path.Join(s.Prefix, name)
		_, err := s.Store.PutObject(ctx, s.Bucket, object, bytes.NewReader(img), int64(len(img)), minio.PutObjectOptions{
			ContentType: "image/png",
		})
		if err != nil {
			s.Logger.Warn("Failed to upload snapshot", zap.String("object", object), zap.Error(err))
		} else {
			s.Logger.Debug("Snapshot uploaded", zap.String("bucket", s.Bucket), zap.String("object", object))
		}
	}

	return local, nil
}

// List returns the snapshot file names in Dir, newest first.
func (s *Snapshotter) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", s.Dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "erro_") && strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return timestampOf(names[i]) > timestampOf(names[j])
	})
	return names, nil
}

// ListUploaded returns the object names of uploaded snapshots.
func (s *Snapshotter) ListUploaded(ctx context.Context) ([]string, error) {
	if s.Store == nil {
		return nil, nil
	}
	prefix := s.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var names []string
	for obj := range s.Store.ListObjects(ctx, s.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, eris.Wrap(obj.Err, "failed to list snapshots")
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// timestampOf extracts the trailing timestamp of a snapshot name.
func timestampOf(name string) string {
	base := strings.TrimSuffix(name, ".png")
	if len(base) < len(TimestampLayout) {
		return base
	}
	return base[len(base)-len(TimestampLayout):]
}
