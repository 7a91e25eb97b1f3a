package models

import (
	"encoding/json"
	"time"
)

// SyncOp enumerates the mutation kinds a queue entry can describe.
type SyncOp string

const (
	SyncOpCreate SyncOp = "create"
	SyncOpUpdate SyncOp = "update"
	SyncOpDelete SyncOp = "delete"
)

// Collection names recorded on queue entries.
const (
	CollectionStudents      = "students"
	CollectionAdmins        = "admins"
	CollectionNotifications = "notifications"
)

// SyncQueueEntry is one pending offline mutation awaiting replay against the
// remote counterpart. Entries drain in enqueue order.
type SyncQueueEntry struct {
	ID         string          `db:"id" json:"id"`
	Op         SyncOp          `db:"op" json:"op"`
	Collection string          `db:"collection" json:"collection"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	EnqueuedAt time.Time       `db:"enqueued_at" json:"enqueued_at"`
}

// SyncStatus summarises queue state for the sync endpoints.
type SyncStatus struct {
	Online  bool `json:"online"`
	Pending int  `json:"pending"`
}
