package integrity

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"revision-validator/core/ledger"
	"revision-validator/core/reconcile"
	"revision-validator/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func testOptions(t *testing.T) Options {
	return Options{
		Table:       "TOS_AUX",
		KeyColumn:   "N_DESENHO",
		LedgerPath:  filepath.Join(t.TempDir(), "Extracao_Dados_FSE.xlsx"),
		LedgerSheet: "Dados FSE",
		Bucket:      "diag",
		Prefix:      "diagnostics",
	}
}

func expectColumns(sqlMock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, name := range reconcile.PartColumnNames() {
		rows.AddRow(name, "varchar(50)", "YES", "", nil, "")
	}
	sqlMock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `TOS_AUX`")).WillReturnRows(rows)
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_RunAll_Healthy(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	expectColumns(sqlMock)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "diag").Return(true, nil)
	client.On("ListObjects", mock.Anything, "diag", mock.Anything).Return(emptyListing())

	opts := testOptions(t)
	_, err := ledger.Open(opts.LedgerPath, opts.LedgerSheet, nil)
	require.NoError(t, err)

	report := NewService(client, db, opts, zap.NewNop()).RunAll(context.Background())
	assert.True(t, report.Healthy())
	assert.Equal(t, "ok", report.Database.Status)
	assert.Equal(t, "ok", report.Ledger.Status)
	assert.Equal(t, "ok", report.Storage.Status)
}

func TestService_RunAll_Degraded(t *testing.T) {
	report := NewService(nil, nil, testOptions(t), nil).RunAll(context.Background())

	assert.False(t, report.Healthy())
	assert.Equal(t, "error", report.Database.Status)
	assert.Equal(t, "ok", report.Ledger.Status)
	assert.Equal(t, "skipped", report.Storage.Status)
}

func TestService_FixStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "diag").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "diag", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

	opts := testOptions(t)
	opts.Region = "us-east-1"
	svc := NewService(client, nil, opts, nil)

	require.NoError(t, svc.FixStorage(context.Background()))
	client.AssertExpectations(t)

	assert.Error(t, NewService(nil, nil, opts, nil).FixStorage(context.Background()))
}
