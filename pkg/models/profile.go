package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile mirrors the identity provider's user record. The ID is the
// token subject.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	DisplayName *string   `db:"display_name" json:"displayName"`
	Role        string    `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TableName returns the database table name
func (Profile) TableName() string {
	return "profiles"
}

// AllowedEmail is an entry in the sign-in allow list. Emails are stored
// lowercase.
type AllowedEmail struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TableName returns the database table name
func (AllowedEmail) TableName() string {
	return "allowed_emails"
}
