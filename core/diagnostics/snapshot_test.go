package diagnostics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"revision-validator/core/reconcile"
	"revision-validator/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeScreen struct {
	img []byte
	err error
}

func (f *fakeScreen) Screenshot(ctx context.Context) ([]byte, error) {
	return f.img, f.err
}

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

func newTestSnapshotter(t *testing.T, screen Screenshotter) *Snapshotter {
	s := NewSnapshotter(screen, filepath.Join(t.TempDir(), "erros"), nil)
	s.now = func() time.Time { return fixedTime }
	return s
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		phase    reconcile.Phase
		id       string
		expected string
	}{
		{"plain", reconcile.PhaseExtract, "55-10", "erro_extracao_FSE_55-10_20240506_070809.png"},
		{"unsafe chars", reconcile.PhaseCompare, `55/10:*?"<>|\x`, "erro_comparacao_5510x_20240506_070809.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileName(tt.phase, tt.id, fixedTime))
		})
	}
}

func TestCapture_WritesLocalFile(t *testing.T) {
	s := newTestSnapshotter(t, &fakeScreen{img: []byte("png")})

	path, err := s.Capture(context.Background(), reconcile.PhaseExtract, "55/10")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "erro_extracao_FSE_5510_20240506_070809.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"erro_extracao_FSE_5510_20240506_070809.png"}, names)
}

func TestCapture_ScreenshotFails(t *testing.T) {
	s := newTestSnapshotter(t, &fakeScreen{err: errors.New("no page")})

	_, err := s.Capture(context.Background(), reconcile.PhaseCompare, "1-2-3")
	assert.ErrorContains(t, err, "no page")
}

func TestCapture_Uploads(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.Client)
	store.On("PutObject", ctx, "diag", "diagnostics/erro_comparacao_123-456-001_20240506_070809.png",
		mock.Anything, int64(3), minio.PutObjectOptions{ContentType: "image/png"}).
		Return(minio.UploadInfo{}, nil)

	s := newTestSnapshotter(t, &fakeScreen{img: []byte("png")}).WithUpload(store, "diag", "diagnostics")

	_, err := s.Capture(ctx, reconcile.PhaseCompare, "123-456-001")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCapture_UploadFailureKeepsLocalFile(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.Client)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket gone"))

	s := newTestSnapshotter(t, &fakeScreen{img: []byte("png")}).WithUpload(store, "diag", "diagnostics")

	path, err := s.Capture(ctx, reconcile.PhaseCompare, "123-456-001")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestList_Order(t *testing.T) {
	s := newTestSnapshotter(t, nil)
	require.NoError(t, os.MkdirAll(s.Dir, 0o755))
	for _, name := range []string{
		"erro_comparacao_a_20240101_000000.png",
		"erro_extracao_FSE_b_20240301_000000.png",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir, name), nil, 0o644))
	}

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"erro_extracao_FSE_b_20240301_000000.png",
		"erro_comparacao_a_20240101_000000.png",
	}, names)
}

func TestList_MissingDir(t *testing.T) {
	s := newTestSnapshotter(t, nil)
	names, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestListUploaded(t *testing.T) {
	ctx := context.Background()
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "diagnostics/erro_a.png"}
	ch <- minio.ObjectInfo{Key: "diagnostics/erro_b.png"}
	close(ch)

	store := new(mocks.Client)
	store.On("ListObjects", ctx, "diag", minio.ListObjectsOptions{Prefix: "diagnostics/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	s := newTestSnapshotter(t, nil).WithUpload(store, "diag", "diagnostics")
	names, err := s.ListUploaded(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"diagnostics/erro_a.png", "diagnostics/erro_b.png"}, names)
}
