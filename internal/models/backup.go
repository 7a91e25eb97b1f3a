package models

import "time"

// BackupVersion tags the export document layout.
const BackupVersion = 1

// BackupDocument is the single-file export format. Records are embedded with
// their password hashes so an export/import round trip is lossless; the
// document is meant for backup media, not for API responses.
type BackupDocument struct {
	Version       int            `json:"version"`
	ExportedAt    time.Time      `json:"exported_at"`
	Students      []Student      `json:"students"`
	Admins        []Admin        `json:"admins"`
	Notifications []Notification `json:"notifications"`
}
