package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/db"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/dberrors"
	"github.com/skulz/skubackend/internal/pkg/helpers"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// OnboardingFilter narrows the onboarding list query
type OnboardingFilter struct {
	Status      *models.OnboardingStatus
	RequestedBy *int64
	Page        int
	Size        int
}

// OnboardingRepository handles onboarding request database operations.
// The approval and rejection paths run inside a single transaction with
// the request row locked, so two concurrent reviewers cannot both win.
type OnboardingRepository struct {
	db       *db.PostgresDB
	students *StudentRepository
	sb       squirrel.StatementBuilderType
}

// NewOnboardingRepository creates a new OnboardingRepository
func NewOnboardingRepository(database *db.PostgresDB, students *StudentRepository) *OnboardingRepository {
	return &OnboardingRepository{
		db:       database,
		students: students,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var onboardingColumns = []string{
	"id", "school_id", "requested_by", "first_name", "last_name", "email",
	"phone_number", "date_of_birth", "photo_url", "grade_id", "address_id", "bus_id",
	"status", "approved_by", "rejection_reason", "created_at", "approved_at", "created_student_id",
}

func scanOnboarding(row pgx.Row) (*models.OnboardingRequest, error) {
	o := &models.OnboardingRequest{}
	err := row.Scan(
		&o.ID, &o.SchoolID, &o.RequestedBy, &o.FirstName, &o.LastName, &o.Email,
		&o.PhoneNumber, &o.DateOfBirth, &o.PhotoURL, &o.GradeID, &o.AddressID, &o.BusID,
		&o.Status, &o.ApprovedBy, &o.RejectionReason, &o.CreatedAt, &o.ApprovedAt, &o.CreatedStudentID,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create stages a new pending request together with its nested address
// and its parent and subject sets, all in one transaction
func (r *OnboardingRepository) Create(ctx context.Context, req *models.OnboardingRequest) (int64, error) {
	var id int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if req.Address != nil {
			addrSql, addrArgs, err := r.sb.Insert("addresses").
				Columns("street_address", "city", "state", "postal_code", "country").
				Values(req.Address.StreetAddress, req.Address.City, req.Address.State,
					req.Address.PostalCode, req.Address.Country).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create address query: %w", err)
			}
			var addressID int64
			if err := tx.QueryRow(ctx, addrSql, addrArgs...).Scan(&addressID); err != nil {
				return fmt.Errorf("error creating onboarding address: %w", err)
			}
			req.AddressID = &addressID
			req.Address.ID = addressID
		}

		sql, args, err := r.sb.Insert("onboarding_requests").
			Columns("school_id", "requested_by", "first_name", "last_name", "email",
				"phone_number", "date_of_birth", "photo_url", "grade_id", "address_id", "bus_id", "status").
			Values(req.SchoolID, req.RequestedBy, req.FirstName, req.LastName, req.Email,
				req.PhoneNumber, req.DateOfBirth, req.PhotoURL, req.GradeID, req.AddressID, req.BusID,
				models.OnboardingPending).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create onboarding query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			logger.Error().Err(err).Msg("Error executing create onboarding query")
			return fmt.Errorf("error creating onboarding request: %w", err)
		}

		if err := r.replaceSet(ctx, tx, "onboarding_parents", "parent_id", id, req.ParentIDs); err != nil {
			return err
		}
		return r.replaceSet(ctx, tx, "onboarding_subjects", "subject_id", id, req.SubjectIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *OnboardingRepository) replaceSet(ctx context.Context, q dbtx, table, column string, requestID int64, ids []int64) error {
	delSql, delArgs, err := r.sb.Delete(table).
		Where(squirrel.Eq{"onboarding_request_id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear %s query: %w", table, err)
	}
	if _, err := q.Exec(ctx, delSql, delArgs...); err != nil {
		return fmt.Errorf("error clearing %s: %w", table, err)
	}

	if len(ids) == 0 {
		return nil
	}

	ins := r.sb.Insert(table).Columns("onboarding_request_id", column)
	for _, id := range ids {
		ins = ins.Values(requestID, id)
	}
	insSql, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert %s query: %w", table, err)
	}
	if _, err := q.Exec(ctx, insSql, insArgs...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("error inserting %s: %w", table, err)
	}

	return nil
}

// GetByID retrieves a request scoped to a school, with both id sets loaded
func (r *OnboardingRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.OnboardingRequest, error) {
	return r.getByID(ctx, r.db.Pool, schoolID, id, false)
}

func (r *OnboardingRepository) getByID(ctx context.Context, q dbtx, schoolID, id int64, forUpdate bool) (*models.OnboardingRequest, error) {
	query := r.sb.Select(onboardingColumns...).
		From("onboarding_requests").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get onboarding query: %w", err)
	}

	req, err := scanOnboarding(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOnboardingNotFound
		}
		logger.Error().Err(err).Int64("requestID", id).Msg("Error scanning onboarding row")
		return nil, fmt.Errorf("error getting onboarding request: %w", err)
	}

	req.ParentIDs, err = r.getSet(ctx, q, "onboarding_parents", "parent_id", id)
	if err != nil {
		return nil, err
	}
	req.SubjectIDs, err = r.getSet(ctx, q, "onboarding_subjects", "subject_id", id)
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (r *OnboardingRepository) getSet(ctx context.Context, q dbtx, table, column string, requestID int64) ([]int64, error) {
	sql, args, err := r.sb.Select(column).
		From(table).
		Where(squirrel.Eq{"onboarding_request_id": requestID}).
		OrderBy(column + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", table, err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s ids: %w", table, err)
	}

	return ids, nil
}

// List retrieves a filtered, paginated page of requests and the total count
func (r *OnboardingRepository) List(ctx context.Context, schoolID int64, filter OnboardingFilter) ([]*models.OnboardingRequest, int64, error) {
	base := squirrel.And{squirrel.Eq{"school_id": schoolID}}
	if filter.Status != nil {
		base = append(base, squirrel.Eq{"status": *filter.Status})
	}
	if filter.RequestedBy != nil {
		base = append(base, squirrel.Eq{"requested_by": *filter.RequestedBy})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").
		From("onboarding_requests").
		Where(base).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count onboarding query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting onboarding requests: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	listSql, listArgs, err := r.sb.Select(onboardingColumns...).
		From("onboarding_requests").
		Where(base).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list onboarding query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, listSql, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying onboarding requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.OnboardingRequest{}
	for rows.Next() {
		req, err := scanOnboarding(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning onboarding row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating onboarding rows: %w", err)
	}

	return requests, total, nil
}

// Approve converts a pending request into an enrolled student atomically.
// Inside one transaction it locks the request row, re-checks the pending
// status under the lock, creates the student, copies the parent and
// subject sets, re-links staged records to the new student and stamps the
// request completed. Any failure rolls the whole thing back and the
// request stays pending.
func (r *OnboardingRepository) Approve(ctx context.Context, schoolID, requestID, approverID int64) (*models.OnboardingRequest, *models.Student, error) {
	var (
		result  *models.OnboardingRequest
		student *models.Student
	)

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		req, err := r.getByID(ctx, tx, schoolID, requestID, true)
		if err != nil {
			return err
		}
		if req.Status != models.OnboardingPending {
			return apperrors.NewStateConflictError(string(req.Status))
		}

		now := time.Now()
		student = req.ToStudent(now)

		studentID, err := r.students.InsertTx(ctx, tx, student)
		if err != nil {
			return err
		}
		student.ID = studentID

		if err := r.students.ReplaceParentsTx(ctx, tx, studentID, req.ParentIDs); err != nil {
			return err
		}
		if err := r.students.ReplaceSubjectsTx(ctx, tx, studentID, req.SubjectIDs); err != nil {
			return err
		}

		// Hand staged documents over to the enrolled student
		relinkSql, relinkArgs, err := r.sb.Update("records").
			SetMap(map[string]interface{}{
				"student_id":            studentID,
				"onboarding_request_id": nil,
			}).
			Where(squirrel.Eq{"onboarding_request_id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build relink records query: %w", err)
		}
		if _, err := tx.Exec(ctx, relinkSql, relinkArgs...); err != nil {
			return fmt.Errorf("error relinking records: %w", err)
		}

		updSql, updArgs, err := r.sb.Update("onboarding_requests").
			SetMap(map[string]interface{}{
				"status":             models.OnboardingCompleted,
				"approved_by":        approverID,
				"approved_at":        now,
				"created_student_id": studentID,
			}).
			Where(squirrel.Eq{"id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build complete onboarding query: %w", err)
		}
		if _, err := tx.Exec(ctx, updSql, updArgs...); err != nil {
			return fmt.Errorf("error completing onboarding request: %w", err)
		}

		req.Status = models.OnboardingCompleted
		req.ApprovedBy = &approverID
		req.ApprovedAt = &now
		req.CreatedStudentID = &studentID
		result = req
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info().
		Int64("requestID", requestID).
		Int64("studentID", student.ID).
		Int64("approverID", approverID).
		Msg("Onboarding request approved")

	return result, student, nil
}

// Reject marks a pending request rejected. The payload, record links and
// id sets stay untouched so the rejection can be audited.
func (r *OnboardingRepository) Reject(ctx context.Context, schoolID, requestID, approverID int64, reason *string) (*models.OnboardingRequest, error) {
	var result *models.OnboardingRequest

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		req, err := r.getByID(ctx, tx, schoolID, requestID, true)
		if err != nil {
			return err
		}
		if req.Status != models.OnboardingPending {
			return apperrors.NewStateConflictError(string(req.Status))
		}

		now := time.Now()
		sql, args, err := r.sb.Update("onboarding_requests").
			SetMap(map[string]interface{}{
				"status":           models.OnboardingRejected,
				"approved_by":      approverID,
				"approved_at":      now,
				"rejection_reason": reason,
			}).
			Where(squirrel.Eq{"id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build reject onboarding query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error rejecting onboarding request: %w", err)
		}

		req.Status = models.OnboardingRejected
		req.ApprovedBy = &approverID
		req.ApprovedAt = &now
		req.RejectionReason = reason
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("requestID", requestID).
		Int64("approverID", approverID).
		Msg("Onboarding request rejected")

	return result, nil
}

// SetPhotoURL stores the staged applicant photo on a request
func (r *OnboardingRepository) SetPhotoURL(ctx context.Context, schoolID, id int64, photoURL *string) error {
	sql, args, err := r.sb.Update("onboarding_requests").
		Set("photo_url", photoURL).
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set onboarding photo query: %w", err)
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting onboarding photo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOnboardingNotFound
	}

	return nil
}
