package models

// AuditAction names a recorded mutation.
type AuditAction string

const (
	AuditRegister          AuditAction = "REGISTER"
	AuditLogin             AuditAction = "LOGIN"
	AuditUpdateProfile     AuditAction = "UPDATE_PROFILE"
	AuditCreateTransaction AuditAction = "CREATE_TRANSACTION"
	AuditUpdateTransaction AuditAction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction AuditAction = "DELETE_TRANSACTION"
)

// Resource types referenced by audit entries.
const (
	ResourceUser        = "user"
	ResourceTransaction = "transaction"
)

// AuditLog is one account or transaction change made by a user. Entries
// outlive the transactions they describe, so ResourceID is not a foreign key.
type AuditLog struct {
	Base
	UserID       string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       AuditAction `gorm:"size:32;not null" json:"action"`
	ResourceType string      `gorm:"size:32;not null" json:"resource_type"`
	ResourceID   string      `gorm:"type:text" json:"resource_id"`
	IPAddress    string      `gorm:"size:64" json:"ip_address"`
	Changes      string      `json:"changes,omitempty"`
}
