package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

// SyncQueueRepository persists pending offline mutations. The queue is a
// durable FIFO keyed by enqueue time.
type SyncQueueRepository struct {
	db *sqlx.DB
}

// NewSyncQueueRepository constructs a SyncQueueRepository.
func NewSyncQueueRepository(db *sqlx.DB) *SyncQueueRepository {
	return &SyncQueueRepository{db: db}
}

// Enqueue appends a mutation record to the queue.
func (r *SyncQueueRepository) Enqueue(ctx context.Context, op models.SyncOp, collection string, payload interface{}) (*models.SyncQueueEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sync payload: %w", err)
	}
	entry := &models.SyncQueueEntry{
		ID:         uuid.NewString(),
		Op:         op,
		Collection: collection,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO sync_queue (id, op, collection, payload, enqueued_at)
		VALUES (:id, :op, :collection, :payload, :enqueued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return nil, fmt.Errorf("enqueue sync entry: %w", err)
	}
	return entry, nil
}

// List returns queued entries in enqueue order.
func (r *SyncQueueRepository) List(ctx context.Context) ([]models.SyncQueueEntry, error) {
	var entries []models.SyncQueueEntry
	const query = `SELECT id, op, collection, payload, enqueued_at FROM sync_queue ORDER BY enqueued_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list sync queue: %w", err)
	}
	return entries, nil
}

// Delete removes a drained entry.
func (r *SyncQueueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sync_queue WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete sync entry: %w", err)
	}
	return nil
}

// Count returns the number of pending entries.
func (r *SyncQueueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sync_queue`); err != nil {
		return 0, fmt.Errorf("count sync queue: %w", err)
	}
	return count, nil
}
