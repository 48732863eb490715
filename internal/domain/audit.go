package domain

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// Audited resource types
const (
	ResourceActor = "actor"
	ResourceMovie = "movie"
)

// AuditEntry is one row of audit_log
type AuditEntry struct {
	Subject      string
	Action       string
	ResourceType string
	ResourceID   int64
	Metadata     map[string]interface{}
	RequestID    string
}
