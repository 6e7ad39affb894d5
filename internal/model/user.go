package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a read-only view of the external user directory. The notification
// service resolves and enumerates identities through it but never writes.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
