package models

import (
	"time"

	"github.com/google/uuid"
)

// School is an academic program offered by a college. College name,
// city and state are denormalized so program listings render without a
// join.
type School struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CollegeID    string    `db:"college_id" json:"collegeId"`
	CollegeName  *string   `db:"college_name" json:"collegeName"`
	CollegeCity  *string   `db:"college_city" json:"collegeCity"`
	CollegeState *string   `db:"college_state" json:"collegeState"`
	Category     *string   `db:"category" json:"category"`
	CIPCode      *string   `db:"cip_code" json:"cipCode"`
	Website      *string   `db:"website" json:"website"`
	Description  *string   `db:"description" json:"description"`
	Source       string    `db:"source" json:"source"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// TableName returns the database table name
func (School) TableName() string {
	return "schools"
}
