package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxFoldersPerUser caps how many folders a single user may own.
const MaxFoldersPerUser = 20

// Folder is a user-owned named container of colleges.
type Folder struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TableName returns the database table name
func (Folder) TableName() string {
	return "favorite_folders"
}

// FolderItem links a college into a folder. (folder_id, college_id) is
// unique.
type FolderItem struct {
	FolderID  uuid.UUID `db:"folder_id" json:"folderId"`
	CollegeID string    `db:"college_id" json:"collegeId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TableName returns the database table name
func (FolderItem) TableName() string {
	return "favorite_folder_items"
}
