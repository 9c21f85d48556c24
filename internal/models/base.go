package models

// Lifecycle status values shared by every persisted entity.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusPending   = "pending"
	StatusDeleted   = "deleted"
	StatusArchived  = "archived"
	StatusSuspended = "suspended"
	StatusBlocked   = "blocked"
)
