package models

import "time"

// Favorite is a (user, college) bookmark. The pair is unique; adding an
// existing favorite is a no-op success.
type Favorite struct {
	UserID    string    `db:"user_id" json:"-"`
	CollegeID string    `db:"college_id" json:"collegeId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TableName returns the database table name
func (Favorite) TableName() string {
	return "favorites"
}
