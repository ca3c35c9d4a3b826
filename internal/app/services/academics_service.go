package services

import (
	"context"
	"strings"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/app/models/dto"
	"github.com/skulz/skubackend/internal/app/repositories"
)

// AcademicsService manages the grade and subject catalogs of a school
type AcademicsService interface {
	CreateGrade(ctx context.Context, schoolID int64, req *dto.CreateGradeRequest) (*models.Grade, error)
	GetGrades(ctx context.Context, schoolID int64) ([]*models.Grade, error)
	UpdateGrade(ctx context.Context, schoolID, id int64, req *dto.CreateGradeRequest) (*models.Grade, error)
	DeleteGrade(ctx context.Context, schoolID, id int64) error

	CreateSubject(ctx context.Context, schoolID int64, req *dto.CreateSubjectRequest) (*models.Subject, error)
	GetSubjects(ctx context.Context, schoolID int64) ([]*models.Subject, error)
	UpdateSubject(ctx context.Context, schoolID, id int64, req *dto.CreateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, schoolID, id int64) error
}

type academicsServiceImpl struct {
	grades   *repositories.GradeRepository
	subjects *repositories.SubjectRepository
}

// NewAcademicsService creates a new academics service instance
func NewAcademicsService(grades *repositories.GradeRepository, subjects *repositories.SubjectRepository) AcademicsService {
	return &academicsServiceImpl{grades: grades, subjects: subjects}
}

// CreateGrade adds a class level to the school catalog
func (s *academicsServiceImpl) CreateGrade(ctx context.Context, schoolID int64, req *dto.CreateGradeRequest) (*models.Grade, error) {
	grade := &models.Grade{
		SchoolID:    schoolID,
		GradeName:   strings.TrimSpace(req.GradeName),
		Description: req.Description,
	}

	id, err := s.grades.Create(ctx, grade)
	if err != nil {
		return nil, err
	}

	return s.grades.GetByID(ctx, schoolID, id)
}

// GetGrades lists the school's class levels
func (s *academicsServiceImpl) GetGrades(ctx context.Context, schoolID int64) ([]*models.Grade, error) {
	return s.grades.GetAll(ctx, schoolID)
}

// UpdateGrade renames a class level
func (s *academicsServiceImpl) UpdateGrade(ctx context.Context, schoolID, id int64, req *dto.CreateGradeRequest) (*models.Grade, error) {
	grade, err := s.grades.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	grade.GradeName = strings.TrimSpace(req.GradeName)
	grade.Description = req.Description

	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, err
	}

	return s.grades.GetByID(ctx, schoolID, id)
}

// DeleteGrade removes a class level. Students keep their rows; the grade
// reference is cleared by the schema.
func (s *academicsServiceImpl) DeleteGrade(ctx context.Context, schoolID, id int64) error {
	return s.grades.Delete(ctx, schoolID, id)
}

// CreateSubject adds a taught subject to the school catalog
func (s *academicsServiceImpl) CreateSubject(ctx context.Context, schoolID int64, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{
		SchoolID:    schoolID,
		SubjectName: strings.TrimSpace(req.SubjectName),
		Description: req.Description,
	}

	id, err := s.subjects.Create(ctx, subject)
	if err != nil {
		return nil, err
	}

	return s.subjects.GetByID(ctx, schoolID, id)
}

// GetSubjects lists the school's taught subjects
func (s *academicsServiceImpl) GetSubjects(ctx context.Context, schoolID int64) ([]*models.Subject, error) {
	return s.subjects.GetAll(ctx, schoolID)
}

// UpdateSubject renames a taught subject
func (s *academicsServiceImpl) UpdateSubject(ctx context.Context, schoolID, id int64, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	subject.SubjectName = strings.TrimSpace(req.SubjectName)
	subject.Description = req.Description

	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, err
	}

	return s.subjects.GetByID(ctx, schoolID, id)
}

// DeleteSubject removes a taught subject and its student links
func (s *academicsServiceImpl) DeleteSubject(ctx context.Context, schoolID, id int64) error {
	return s.subjects.Delete(ctx, schoolID, id)
}
