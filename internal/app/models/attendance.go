package models

import "time"

// AttendanceStatus enumerates the possible per-day attendance marks.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Attendance is one student's mark for one date.
// (school, student, date) is unique.
type Attendance struct {
	ID         int64            `json:"id" db:"id"`
	SchoolID   int64            `json:"schoolId" db:"school_id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	Date       time.Time        `json:"date" db:"date"`
	Status     AttendanceStatus `json:"status" db:"status" example:"present"`
	Remarks    *string          `json:"remarks,omitempty" db:"remarks"`
	RecordedBy string           `json:"recordedBy" db:"recorded_by"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`

	// Relation (populated when needed)
	Student *Student `json:"student,omitempty"`
}

// AttendanceSummary is the per-status count for one date.
type AttendanceSummary struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	Excused int    `json:"excused"`
}
