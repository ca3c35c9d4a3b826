package services

import (
	"context"
	"fmt"
	"time"

	"github.com/skulz/skubackend/internal/app/auth"
	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
)

// AttendanceService handles daily attendance marking and summaries.
// Marking is idempotent: re-marking a student for the same date overwrites
// the earlier status.
type AttendanceService interface {
	Mark(ctx context.Context, user *models.User, schoolID int64, req *dto.MarkAttendanceRequest) (*models.Attendance, error)
	MarkBulk(ctx context.Context, user *models.User, schoolID int64, req *dto.BulkAttendanceRequest) error
	GetByDate(ctx context.Context, schoolID int64, date string) ([]*models.Attendance, error)
	GetByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Attendance, error)
	GetSummary(ctx context.Context, schoolID int64, date string) (*models.AttendanceSummary, error)
}

type attendanceServiceImpl struct {
	attendance *repositories.AttendanceRepository
	students   *repositories.StudentRepository
}

// NewAttendanceService creates a new attendance service instance
func NewAttendanceService(attendance *repositories.AttendanceRepository, students *repositories.StudentRepository) AttendanceService {
	return &attendanceServiceImpl{attendance: attendance, students: students}
}

func parseAttendanceDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}
	return date, nil
}

func recorderName(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.FirstName + " " + user.LastName
}

// Mark records one student's attendance for a date
func (s *attendanceServiceImpl) Mark(ctx context.Context, user *models.User, schoolID int64, req *dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return nil, apperrors.NewForbiddenError("your role cannot mark attendance")
	}

	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.students.GetByID(ctx, schoolID, req.StudentID); err != nil {
		return nil, err
	}

	mark := &models.Attendance{
		SchoolID:   schoolID,
		StudentID:  req.StudentID,
		Date:       date,
		Status:     req.Status,
		Remarks:    req.Remarks,
		RecordedBy: recorderName(user),
	}

	id, err := s.attendance.Upsert(ctx, mark)
	if err != nil {
		return nil, err
	}
	mark.ID = id

	return mark, nil
}

// MarkBulk records many students for one date in a single statement
func (s *attendanceServiceImpl) MarkBulk(ctx context.Context, user *models.User, schoolID int64, req *dto.BulkAttendanceRequest) error {
	if !auth.CanEditStudents(auth.RoleOf(user)) && !user.IsSuperuser {
		return apperrors.NewForbiddenError("your role cannot mark attendance")
	}

	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return err
	}

	recordedBy := recorderName(user)
	marks := make([]*models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		marks = append(marks, &models.Attendance{
			SchoolID:   schoolID,
			StudentID:  entry.StudentID,
			Date:       date,
			Status:     entry.Status,
			Remarks:    entry.Remarks,
			RecordedBy: recordedBy,
		})
	}

	return s.attendance.BulkUpsert(ctx, marks)
}

// GetByDate lists every mark of the school for one date
func (s *attendanceServiceImpl) GetByDate(ctx context.Context, schoolID int64, date string) ([]*models.Attendance, error) {
	day, err := parseAttendanceDate(date)
	if err != nil {
		return nil, err
	}
	return s.attendance.ListByDate(ctx, schoolID, day)
}

// GetByStudent lists a student's marks, newest first
func (s *attendanceServiceImpl) GetByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Attendance, error) {
	if _, err := s.students.GetByID(ctx, schoolID, studentID); err != nil {
		return nil, err
	}
	return s.attendance.ListByStudent(ctx, schoolID, studentID)
}

// GetSummary returns the per-status counts for one date
func (s *attendanceServiceImpl) GetSummary(ctx context.Context, schoolID int64, date string) (*models.AttendanceSummary, error) {
	day, err := parseAttendanceDate(date)
	if err != nil {
		return nil, err
	}
	return s.attendance.Summary(ctx, schoolID, day)
}
