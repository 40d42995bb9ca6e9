package partsdb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"revision-validator/core/reconcile"
	"revision-validator/core/utils"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SourceName identifies the parts database in Unavailable errors and logs.
const SourceName = "database"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Source looks part numbers up in the parts database. A nil db makes every
// lookup report the source as unreachable.
type Source struct {
	db     *gorm.DB
	query  string
	logger *zap.Logger
}

var _ reconcile.PartsSource = (*Source)(nil)

// NewSource builds the lookup query for cfg. Table and column names are
// interpolated, so they must be plain identifiers.
func NewSource(db *gorm.DB, cfg Config, logger *zap.Logger) (*Source, error) {
	if !identifier.MatchString(cfg.Table) || !identifier.MatchString(cfg.KeyColumn) {
		return nil, eris.Errorf("invalid parts table %q or key column %q", cfg.Table, cfg.KeyColumn)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		db:     db,
		query:  Query(cfg),
		logger: logger.With(zap.String("source", SourceName)),
	}, nil
}

// Query returns the select statement used by Lookup.
func Query(cfg Config) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(reconcile.PartColumnNames(), ", "), cfg.Table, cfg.KeyColumn)
}

// Lookup returns the first record whose key column equals partNumber.
func (s *Source) Lookup(ctx context.Context, partNumber string) (reconcile.PartRecord, error) {
	if s.db == nil {
		return reconcile.PartRecord{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonUnreachable,
			eris.New("parts database not connected"))
	}

	rows, err := s.db.WithContext(ctx).Raw(s.query, partNumber).Rows()
	if err != nil {
		return reconcile.PartRecord{}, unreachable(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return reconcile.PartRecord{}, unreachable(err)
		}
		s.logger.Info("Part number not in database", zap.String("part_number", partNumber))
		return reconcile.PartRecord{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonNotFound,
			eris.Errorf("no record for %s", partNumber))
	}

	values := make([]any, len(reconcile.PartColumns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return reconcile.PartRecord{}, unreachable(err)
	}

	var record reconcile.PartRecord
	for i, col := range reconcile.PartColumns {
		*col.Field(&record) = utils.ToString(values[i])
	}
	s.logger.Debug("Part record found", zap.String("part_number", partNumber), zap.String("revision", record.RevPN))
	return record, nil
}

func unreachable(err error) error {
	return reconcile.NewUnavailable(SourceName, reconcile.ReasonUnreachable, eris.Wrap(err, "parts lookup failed"))
}
