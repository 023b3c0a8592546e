package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campushq/student_admin_backend_go/internal/models"
)

// ErrAlreadyProcessed: request sudah keluar dari status pending.
type ErrAlreadyProcessed struct{ Message string }

func (e ErrAlreadyProcessed) Error() string { return e.Message }

type CreatePasswordRequestParams struct {
	StudentID       string
	StudentName     string
	StudentEmail    string
	NewPasswordHash string
	Reason          string
}

type ProcessRequestParams struct {
	RequestID   string
	AdminID     string
	AdminName   string
	Reason      string // hanya dipakai reject
	ProcessedAt time.Time
}

type PasswordRequestRepo interface {
	Create(ctx context.Context, p CreatePasswordRequestParams) (models.PasswordRequest, error)
	GetByID(ctx context.Context, id string) (models.PasswordRequest, error)
	ListAll(ctx context.Context, statusFilter string) ([]models.PasswordRequest, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.PasswordRequest, error)
	Approve(ctx context.Context, p ProcessRequestParams) error
	Reject(ctx context.Context, p ProcessRequestParams) error
	CountByStudent(ctx context.Context, studentID string) (total, pending int, err error)
}

type passwordRequestRepo struct{ db *sql.DB }

func NewPasswordRequestRepo(db *sql.DB) PasswordRequestRepo {
	return &passwordRequestRepo{db: db}
}

const requestColumns = `id, student_id, student_name, student_email, new_password_hash,
	status, reason, admin_id, admin_name, requested_at, processed_at`

func scanRequest(scan func(dest ...any) error) (models.PasswordRequest, error) {
	var r models.PasswordRequest
	err := scan(&r.ID, &r.StudentID, &r.StudentName, &r.StudentEmail, &r.NewPasswordHash,
		&r.Status, &r.Reason, &r.AdminID, &r.AdminName, &r.RequestedAt, &r.ProcessedAt)
	return r, err
}

func (r *passwordRequestRepo) Create(ctx context.Context, p CreatePasswordRequestParams) (models.PasswordRequest, error) {
	id := uuid.NewString()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO password_requests (id, student_id, student_name, student_email, new_password_hash, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+requestColumns,
		id, p.StudentID, p.StudentName, p.StudentEmail, p.NewPasswordHash, p.Reason)
	return scanRequest(row.Scan)
}

func (r *passwordRequestRepo) GetByID(ctx context.Context, id string) (models.PasswordRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM password_requests WHERE id = $1`, id)
	req, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PasswordRequest{}, ErrNotFound{"password change request not found"}
	}
	return req, err
}

func (r *passwordRequestRepo) ListAll(ctx context.Context, statusFilter string) ([]models.PasswordRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM password_requests`
	args := []any{}
	if statusFilter != "" {
		q += ` WHERE status = $1`
		args = append(args, statusFilter)
	}
	q += ` ORDER BY requested_at DESC`
	return r.list(ctx, q, args...)
}

func (r *passwordRequestRepo) ListByStudent(ctx context.Context, studentID string) ([]models.PasswordRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+`
		  FROM password_requests
		 WHERE student_id = $1
		 ORDER BY requested_at DESC`, studentID)
}

func (r *passwordRequestRepo) list(ctx context.Context, q string, args ...any) ([]models.PasswordRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PasswordRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Approve menjalankan transisi pending->approved DAN penggantian password
// student dalam satu transaksi. Transisinya conditional update (WHERE
// status='pending') supaya dua approve/reject yang balapan menghasilkan tepat
// satu pemenang, tanpa state setengah jadi.
func (r *passwordRequestRepo) Approve(ctx context.Context, p ProcessRequestParams) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var studentID, newHash string
	err = tx.QueryRowContext(ctx, `
		UPDATE password_requests
		   SET status = 'approved', admin_id = $2, admin_name = $3, processed_at = $4
		 WHERE id = $1 AND status = 'pending'
		RETURNING student_id, new_password_hash`,
		p.RequestID, p.AdminID, p.AdminName, p.ProcessedAt,
	).Scan(&studentID, &newHash)
	if errors.Is(err, sql.ErrNoRows) {
		return r.classifyMissedUpdate(ctx, p.RequestID)
	}
	if err != nil {
		return err
	}

	// Kalau student-nya sudah dihapus, update ini no-op tapi request tetap
	// approved (mengikuti perilaku findByIdAndUpdate di sistem lama).
	if _, err := tx.ExecContext(ctx, `
		UPDATE students SET password_hash = $2, updated_at = now() WHERE id = $1`,
		studentID, newHash); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *passwordRequestRepo) Reject(ctx context.Context, p ProcessRequestParams) error {
	// reason student di-overwrite dengan alasan admin, bukan di-append
	res, err := r.db.ExecContext(ctx, `
		UPDATE password_requests
		   SET status = 'rejected', admin_id = $2, admin_name = $3, reason = $4, processed_at = $5
		 WHERE id = $1 AND status = 'pending'`,
		p.RequestID, p.AdminID, p.AdminName, p.Reason, p.ProcessedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return r.classifyMissedUpdate(ctx, p.RequestID)
	}
	return nil
}

// classifyMissedUpdate membedakan "request tidak ada" dari "sudah diproses"
// setelah conditional update tidak mengenai baris apa pun.
func (r *passwordRequestRepo) classifyMissedUpdate(ctx context.Context, requestID string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM password_requests WHERE id = $1)`, requestID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound{"password change request not found"}
	}
	return ErrAlreadyProcessed{"request has already been processed"}
}

func (r *passwordRequestRepo) CountByStudent(ctx context.Context, studentID string) (int, int, error) {
	var total, pending int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE status = 'pending')
		  FROM password_requests
		 WHERE student_id = $1`, studentID).Scan(&total, &pending)
	return total, pending, err
}
