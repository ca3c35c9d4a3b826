package dto

import (
	"github.com/skulz/skubackend/internal/app/models"
)

// MarkAttendanceRequest marks one student for one date
type MarkAttendanceRequest struct {
	StudentID int64                   `json:"studentId" binding:"required,min=1"`
	Date      string                  `json:"date" binding:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" binding:"required,oneof=present absent late excused"`
	Remarks   *string                 `json:"remarks,omitempty"`
}

// BulkAttendanceRequest marks many students for a single date
type BulkAttendanceRequest struct {
	Date    string                `json:"date" binding:"required,datetime=2006-01-02"`
	Entries []BulkAttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// BulkAttendanceEntry is one student's mark in a bulk request
type BulkAttendanceEntry struct {
	StudentID int64                   `json:"studentId" binding:"required,min=1"`
	Status    models.AttendanceStatus `json:"status" binding:"required,oneof=present absent late excused"`
	Remarks   *string                 `json:"remarks,omitempty"`
}

// AttendanceResponse represents one stored attendance mark
type AttendanceResponse struct {
	ID          int64   `json:"id"`
	StudentID   int64   `json:"studentId"`
	StudentName string  `json:"studentName,omitempty"`
	Date        string  `json:"date" example:"2026-02-10"`
	Status      string  `json:"status" example:"present"`
	Remarks     *string `json:"remarks,omitempty"`
	RecordedBy  string  `json:"recordedBy"`
}

// FromAttendance converts a models.Attendance to an AttendanceResponse
func FromAttendance(a *models.Attendance) AttendanceResponse {
	if a == nil {
		return AttendanceResponse{}
	}
	resp := AttendanceResponse{
		ID:         a.ID,
		StudentID:  a.StudentID,
		Date:       a.Date.Format("2006-01-02"),
		Status:     string(a.Status),
		Remarks:    a.Remarks,
		RecordedBy: a.RecordedBy,
	}
	if a.Student != nil {
		resp.StudentName = a.Student.FirstName + " " + a.Student.LastName
	}
	return resp
}
