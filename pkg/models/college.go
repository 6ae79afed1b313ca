package models

import (
	"time"

	"github.com/lib/pq"
)

// College is a single institution row. IDs are opaque strings assigned
// at import time. acceptance_rate and graduation_rate are stored as
// percentages (0-100). latitude/longitude stay NULL until the geocode
// backfill runs.
type College struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	City               string         `db:"city" json:"city"`
	State              string         `db:"state" json:"state"`
	ZipCode            *string        `db:"zip_code" json:"zipCode"`
	Website            *string        `db:"website" json:"website"`
	Region             *string        `db:"region" json:"region"`
	Category           *string        `db:"category" json:"category"`
	Type               *string        `db:"type" json:"type"`
	Size               *string        `db:"size" json:"size"`
	Enrollment         *int           `db:"enrollment" json:"enrollment"`
	TuitionInState     *int           `db:"tuition_in_state" json:"tuitionInState"`
	TuitionOutOfState  *int           `db:"tuition_out_of_state" json:"tuitionOutOfState"`
	NetCost            *int           `db:"net_cost" json:"netCost"`
	NetPricingGuidance *string        `db:"net_pricing_guidance" json:"netPricingGuidance"`
	AcceptanceRate     *float64       `db:"acceptance_rate" json:"acceptanceRate"`
	SATMath            *int           `db:"sat_math" json:"satMath"`
	SATReading         *int           `db:"sat_reading" json:"satReading"`
	ACTComposite       *int           `db:"act_composite" json:"actComposite"`
	GraduationRate     *float64       `db:"graduation_rate" json:"graduationRate"`
	Programs           pq.StringArray `db:"programs" json:"programs"`
	Description        *string        `db:"description" json:"description"`
	ImageURL           *string        `db:"image_url" json:"imageUrl"`
	Jesuit             bool           `db:"jesuit" json:"jesuit"`
	ScorecardID        *string        `db:"scorecard_id" json:"scorecardId"`
	Latitude           *float64       `db:"latitude" json:"latitude"`
	Longitude          *float64       `db:"longitude" json:"longitude"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// TableName returns the database table name
func (College) TableName() string {
	return "colleges"
}

// ScoredCollege is a college annotated with its similarity score.
type ScoredCollege struct {
	College
	SimilarityScore int `json:"similarityScore"`
}

// CollegeSuggestion is the autocomplete projection.
type CollegeSuggestion struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CollegeSearchResult is the paginated listing response.
type CollegeSearchResult struct {
	Colleges []College `json:"colleges"`
	Total    int       `json:"total"`
}
