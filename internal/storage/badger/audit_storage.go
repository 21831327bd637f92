package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// AuditStorage implements the AuditStorage interface for Badger
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

// Append stores an audit record
func (s *AuditStorage) Append(record *interfaces.AuditRecord) error {
	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to store audit record: %w", err)
	}
	return nil
}

// Recent returns the most recent audit records up to limit
func (s *AuditStorage) Recent(limit int) ([]interfaces.AuditRecord, error) {
	var records []interfaces.AuditRecord
	query := badgerhold.Where("ID").Ne("").SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	return records, nil
}
