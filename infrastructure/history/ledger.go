// Package history persists completed exports in a SQLite database.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"livephoto-audio/domain/distribution"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Export is the stored form of distribution.ExportRecord
type Export struct {
	ID           uint   `gorm:"primaryKey"`
	ArtifactPath string `gorm:"index"`
	Method       string
	Destination  string
	SizeBytes    int64
	ExportedAt   time.Time `gorm:"index"`
}

// Ledger implements distribution.ExportLedger with gorm
type Ledger struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// LedgerOption is a functional option for configuring Ledger
type LedgerOption func(*Ledger)

// WithLogger sets the logger used for the ledger and slow-query warnings
func WithLogger(l logrus.FieldLogger) LedgerOption {
	return func(lg *Ledger) {
		lg.logger = l
	}
}

// Open opens (creating if needed) the ledger database at path.
// ":memory:" keeps the ledger in memory.
func Open(path string, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithField("component", "history")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	gormLogger := logger.New(
		l.logger,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	// set only a single connection so we don't actually have concurrent writes
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve history database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Export{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	l.db = db
	return l, nil
}

// Record implements distribution.ExportLedger
func (l *Ledger) Record(ctx context.Context, rec distribution.ExportRecord) error {
	row := Export{
		ArtifactPath: rec.ArtifactPath,
		Method:       string(rec.Method),
		Destination:  rec.Destination,
		SizeBytes:    rec.SizeBytes,
		ExportedAt:   rec.ExportedAt.UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	l.logger.WithFields(logrus.Fields{
		"artifact":    rec.ArtifactPath,
		"destination": rec.Destination,
	}).Debug("export recorded")
	return nil
}

// List returns the most recent exports first. limit <= 0 returns all.
func (l *Ledger) List(ctx context.Context, limit int) ([]distribution.ExportRecord, error) {
	var rows []Export
	q := l.db.WithContext(ctx).Order("exported_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	records := make([]distribution.ExportRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, distribution.ExportRecord{
			ArtifactPath: r.ArtifactPath,
			Method:       distribution.Method(r.Method),
			Destination:  r.Destination,
			SizeBytes:    r.SizeBytes,
			ExportedAt:   r.ExportedAt,
		})
	}
	return records, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Ledger implements distribution.ExportLedger
var _ distribution.ExportLedger = (*Ledger)(nil)
