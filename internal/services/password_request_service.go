package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/pkg/authutil"
)

// ===== Error types dipakai handler lewat mapError =====

type ErrBadRequest struct{ Err error }

func (e ErrBadRequest) Error() string { return e.Err.Error() }

type ErrConflict struct{ Msg string }

func (e ErrConflict) Error() string { return e.Msg }

type ErrNotFoundResource struct{ Msg string }

func (e ErrNotFoundResource) Error() string { return e.Msg }

type ErrAlreadyProcessed struct{ Msg string }

func (e ErrAlreadyProcessed) Error() string { return e.Msg }

// PasswordRequestService adalah inti workflow ganti password:
// student mengajukan, admin meng-approve (password ikut terganti) atau
// me-reject (reason di-overwrite). Transisi status hanya sekali.
type PasswordRequestService struct {
	repo       repositories.PasswordRequestRepo
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

func NewPasswordRequestService(r repositories.PasswordRequestRepo, v *validator.Validate, bcryptCost int) *PasswordRequestService {
	return &PasswordRequestService{
		repo:       r,
		validate:   v,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

const defaultSubmitReason = "Password change requested"
const defaultRejectReason = "Request rejected by admin"

// Submit membuat request baru untuk student yang sedang login. Nama/email
// student di-snapshot supaya record tetap berarti kalau student-nya berubah.
// Boleh ada lebih dari satu request pending per student.
func (s *PasswordRequestService) Submit(ctx context.Context, student models.Principal, in models.SubmitPasswordRequest) (string, error) {
	if err := s.validate.Struct(in); err != nil {
		return "", ErrBadRequest{Err: err}
	}

	hash, err := authutil.HashPassword(in.NewPassword, s.bcryptCost)
	if err != nil {
		return "", err
	}

	reason := in.Reason
	if reason == "" {
		reason = defaultSubmitReason
	}

	req, err := s.repo.Create(ctx, repositories.CreatePasswordRequestParams{
		StudentID:       student.ID,
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		NewPasswordHash: hash,
		Reason:          reason,
	})
	if err != nil {
		return "", err
	}
	return req.ID, nil
}

// ListAll untuk admin; filter status opsional; terbaru dulu.
func (s *PasswordRequestService) ListAll(ctx context.Context, statusFilter string) ([]models.PasswordRequestDTO, error) {
	switch statusFilter {
	case "", models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		return nil, ErrBadRequest{Err: errors.New("unknown status filter")}
	}

	rows, err := s.repo.ListAll(ctx, statusFilter)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// ListMine untuk student; hash password tidak pernah ikut keluar.
func (s *PasswordRequestService) ListMine(ctx context.Context, studentID string) ([]models.PasswordRequestDTO, error) {
	rows, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

func (s *PasswordRequestService) Approve(ctx context.Context, admin models.Principal, requestID string) error {
	err := s.repo.Approve(ctx, repositories.ProcessRequestParams{
		RequestID:   requestID,
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		ProcessedAt: s.now(),
	})
	return mapProcessErr(err)
}

func (s *PasswordRequestService) Reject(ctx context.Context, admin models.Principal, requestID, reason string) error {
	if reason == "" {
		reason = defaultRejectReason
	}
	err := s.repo.Reject(ctx, repositories.ProcessRequestParams{
		RequestID:   requestID,
		AdminID:     admin.ID,
		AdminName:   admin.Name,
		Reason:      reason,
		ProcessedAt: s.now(),
	})
	return mapProcessErr(err)
}

func mapProcessErr(err error) error {
	if err == nil {
		return nil
	}
	var notFound repositories.ErrNotFound
	if errors.As(err, &notFound) {
		return ErrNotFoundResource{Msg: notFound.Message}
	}
	var processed repositories.ErrAlreadyProcessed
	if errors.As(err, &processed) {
		return ErrAlreadyProcessed{Msg: processed.Message}
	}
	return err
}

func toDTOs(rows []models.PasswordRequest) []models.PasswordRequestDTO {
	out := make([]models.PasswordRequestDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDTO())
	}
	return out
}
