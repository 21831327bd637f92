package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/adjutant/internal/common"
	"github.com/ternarybob/adjutant/internal/interfaces"
)

// Manager aggregates the Badger-backed storage implementations behind a
// single connection lifecycle.
type Manager struct {
	db           *BadgerDB
	kvStorage    interfaces.KeyValueStorage
	chunkStorage interfaces.ChunkStorage
	auditStorage interfaces.AuditStorage
	logger       arbor.ILogger
}

// NewManager opens the database and wires the storage implementations
func NewManager(config *common.BadgerConfig, logger arbor.ILogger) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger storage: %w", err)
	}

	return &Manager{
		db:           db,
		kvStorage:    NewKVStorage(db, logger),
		chunkStorage: NewChunkStorage(db, logger),
		auditStorage: NewAuditStorage(db, logger),
		logger:       logger,
	}, nil
}

// KeyValueStorage returns the key/value storage implementation
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kvStorage
}

// ChunkStorage returns the document chunk storage implementation
func (m *Manager) ChunkStorage() interfaces.ChunkStorage {
	return m.chunkStorage
}

// AuditStorage returns the audit record storage implementation
func (m *Manager) AuditStorage() interfaces.AuditStorage {
	return m.auditStorage
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
