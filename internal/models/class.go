package models

import "time"

// Class represents a taught class owning its weekly time slots.
type Class struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Subject     string    `db:"subject" json:"subject"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Room        string    `db:"room" json:"room"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with teacher and enrollment context.
type ClassDetail struct {
	Class
	TeacherName   string `db:"teacher_name" json:"teacher_name"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolled_count"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Subject   string
	TeacherID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
