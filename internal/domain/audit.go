package domain

import "time"

// AuditEntry is one row written by the audit-on-update triggers.
type AuditEntry struct {
	ID        int64
	TableName string
	RowID     int64
	Action    string
	OldData   []byte
	ChangedAt time.Time
}
