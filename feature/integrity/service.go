package integrity

import (
	"context"
	"fmt"

	"revision-validator/core/ledger"
	"revision-validator/core/storage"
	"revision-validator/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options locates what the checks inspect.
type Options struct {
	// Table and KeyColumn name the parts lookup table.
	Table     string
	KeyColumn string
	// LedgerPath and LedgerSheet locate the ledger workbook.
	LedgerPath  string
	LedgerSheet string
	// Bucket, Prefix and Region locate diagnostic uploads.
	Bucket string
	Prefix string
	Region string
}

// Service runs the pre-flight checks of a validation run.
type Service struct {
	client storage.Client
	db     *gorm.DB
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil when
// storage is disabled or the database is unreachable.
func NewService(client storage.Client, db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, db: db, opts: opts, logger: logger}
}

// CheckDatabase verifies the parts lookup table.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(s.db, s.opts.Table, s.opts.KeyColumn)
}

// CheckLedger inspects the ledger header.
func (s *Service) CheckLedger() (*ledger.HeaderReport, error) {
	return ledger.Inspect(s.opts.LedgerPath, s.opts.LedgerSheet)
}

// CheckStorage verifies the diagnostics bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage is disabled")
	}
	return checks.CheckStorage(ctx, s.client, s.opts.Bucket, s.opts.Prefix)
}

// FixStorage creates the diagnostics bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("storage is disabled")
	}
	if err := storage.EnsureBucket(ctx, s.client, s.opts.Bucket, s.opts.Region); err != nil {
		return err
	}
	s.logger.Info("Diagnostics bucket ready", zap.String("bucket", s.opts.Bucket))
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"` // "ok", "error", "skipped"
	Error  string `json:"error,omitempty"`
	Report any    `json:"report,omitempty"`
}

// Report holds the outcome of every check.
type Report struct {
	Database Result `json:"database"`
	Ledger   Result `json:"ledger"`
	Storage  Result `json:"storage"`
}

// Healthy reports whether no check failed.
func (r *Report) Healthy() bool {
	return r.Database.Status != "error" && r.Ledger.Status != "error" && r.Storage.Status != "error"
}

// RunAll runs every check. A failing check does not stop the others.
func (s *Service) RunAll(ctx context.Context) *Report {
	report := &Report{}

	if db, err := s.CheckDatabase(); err != nil {
		report.Database = Result{Status: "error", Error: err.Error()}
	} else if !db.Matched {
		report.Database = Result{Status: "error", Report: db}
	} else {
		report.Database = Result{Status: "ok", Report: db}
	}

	if l, err := s.CheckLedger(); err != nil {
		report.Ledger = Result{Status: "error", Error: err.Error()}
	} else if !l.Usable() {
		report.Ledger = Result{Status: "error", Report: l}
	} else {
		report.Ledger = Result{Status: "ok", Report: l}
	}

	switch st, err := s.CheckStorage(ctx); {
	case s.client == nil:
		report.Storage = Result{Status: "skipped"}
	case err != nil:
		report.Storage = Result{Status: "error", Error: err.Error()}
	case !st.Exists:
		report.Storage = Result{Status: "error", Report: st}
	default:
		report.Storage = Result{Status: "ok", Report: st}
	}

	return report
}
