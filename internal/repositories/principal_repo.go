package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/campushq/student_admin_backend_go/internal/models"
)

// =============== Errors ===============
type ErrNotFound struct{ Message string }

func (e ErrNotFound) Error() string { return e.Message }

// =============== Params struct dipakai Service ===============
type CreateAdminParams struct {
	Name         string
	Email        string
	PasswordHash string
}

type CreateStudentParams struct {
	Name         string
	Email        string
	PasswordHash string
	Course       string
}

type UpdateStudentParams struct {
	ID     string
	Name   string
	Email  string
	Course string
}

// =============== Interface ===============
type PrincipalRepo interface {
	// Admin
	GetAdminByID(ctx context.Context, id string) (models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (models.Admin, error)
	AdminEmailExists(ctx context.Context, email string) (bool, error)
	CreateAdmin(ctx context.Context, p CreateAdminParams) (models.Admin, error)

	// Student
	GetStudentByID(ctx context.Context, id string) (models.Student, error)
	GetStudentByEmail(ctx context.Context, email string) (models.Student, error)
	StudentEmailExists(ctx context.Context, email string) (bool, error)
	CreateStudent(ctx context.Context, p CreateStudentParams) (models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	UpdateStudent(ctx context.Context, p UpdateStudentParams) (models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// =============== Implementasi ===============
type principalRepo struct{ db *sql.DB }

func NewPrincipalRepo(db *sql.DB) PrincipalRepo { return &principalRepo{db: db} }

const adminColumns = `id, name, email, password_hash, role, created_at`

func scanAdmin(row *sql.Row) (models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrNotFound{"admin not found"}
	}
	return a, err
}

func (r *principalRepo) GetAdminByID(ctx context.Context, id string) (models.Admin, error) {
	return scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

func (r *principalRepo) GetAdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	return scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
}

func (r *principalRepo) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *principalRepo) CreateAdmin(ctx context.Context, p CreateAdminParams) (models.Admin, error) {
	id := uuid.NewString()
	return scanAdmin(r.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, 'admin')
		RETURNING `+adminColumns,
		id, p.Name, p.Email, p.PasswordHash))
}

const studentColumns = `id, name, email, password_hash, course, enrollment_date, created_at, updated_at`

func scanStudent(row *sql.Row) (models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash,
		&s.Course, &s.EnrollmentDate, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, ErrNotFound{"student not found"}
	}
	return s, err
}

func (r *principalRepo) GetStudentByID(ctx context.Context, id string) (models.Student, error) {
	return scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

func (r *principalRepo) GetStudentByEmail(ctx context.Context, email string) (models.Student, error) {
	return scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, email))
}

func (r *principalRepo) StudentEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *principalRepo) CreateStudent(ctx context.Context, p CreateStudentParams) (models.Student, error) {
	id := uuid.NewString()
	course := p.Course
	if course == "" {
		course = models.DefaultCourse
	}
	return scanStudent(r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, name, email, password_hash, course)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+studentColumns,
		id, p.Name, p.Email, p.PasswordHash, course))
}

func (r *principalRepo) ListStudents(ctx context.Context) ([]models.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		  FROM students
		 ORDER BY enrollment_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Student, 0)
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash,
			&s.Course, &s.EnrollmentDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStudent: enrollment_date sengaja tidak pernah ikut di-update.
func (r *principalRepo) UpdateStudent(ctx context.Context, p UpdateStudentParams) (models.Student, error) {
	return scanStudent(r.db.QueryRowContext(ctx, `
		UPDATE students
		   SET name = $2, email = $3, course = $4, updated_at = now()
		 WHERE id = $1
		RETURNING `+studentColumns,
		p.ID, p.Name, p.Email, p.Course))
}

func (r *principalRepo) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound{"student not found"}
	}
	return nil
}
