package models

import "time"

// Grade is a class level within a school, e.g. "Grade 1".
// (school, grade_name) is unique.
type Grade struct {
	ID          int64     `json:"id" db:"id"`
	SchoolID    int64     `json:"schoolId" db:"school_id"`
	GradeName   string    `json:"gradeName" db:"grade_name" example:"Grade 1"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Subject is a taught subject within a school. (school, subject_name) is unique.
type Subject struct {
	ID          int64     `json:"id" db:"id"`
	SchoolID    int64     `json:"schoolId" db:"school_id"`
	SubjectName string    `json:"subjectName" db:"subject_name" example:"Mathematics"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
