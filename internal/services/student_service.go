package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/pkg/authutil"
)

// StudentService: CRUD student untuk admin + update profil oleh student sendiri.
type StudentService struct {
	repo       repositories.PrincipalRepo
	reqRepo    repositories.PasswordRequestRepo
	validate   *validator.Validate
	bcryptCost int
}

func NewStudentService(r repositories.PrincipalRepo, reqs repositories.PasswordRequestRepo, v *validator.Validate, bcryptCost int) *StudentService {
	return &StudentService{repo: r, reqRepo: reqs, validate: v, bcryptCost: bcryptCost}
}

type CreateStudentInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Course   string `json:"course"`
}

type UpdateStudentInput struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
	Course string `json:"course"`
}

type DashboardDTO struct {
	User            models.UserDTO `json:"user"`
	TotalRequests   int            `json:"totalRequests"`
	PendingRequests int            `json:"pendingRequests"`
}

func (s *StudentService) List(ctx context.Context) ([]models.UserDTO, error) {
	rows, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserDTO, 0, len(rows))
	for _, st := range rows {
		out = append(out, st.Principal().ToUserDTO())
	}
	return out, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (models.UserDTO, error) {
	st, err := s.repo.GetStudentByID(ctx, id)
	if err != nil {
		return models.UserDTO{}, mapRepoErr(err)
	}
	return st.Principal().ToUserDTO(), nil
}

func (s *StudentService) Create(ctx context.Context, in CreateStudentInput) (models.UserDTO, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.UserDTO{}, ErrBadRequest{Err: err}
	}

	exists, err := s.repo.StudentEmailExists(ctx, in.Email)
	if err != nil {
		return models.UserDTO{}, err
	}
	if exists {
		return models.UserDTO{}, ErrConflict{Msg: "Email already exists"}
	}

	hash, err := authutil.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return models.UserDTO{}, err
	}

	st, err := s.repo.CreateStudent(ctx, repositories.CreateStudentParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Course:       in.Course,
	})
	if err != nil {
		return models.UserDTO{}, err
	}
	return st.Principal().ToUserDTO(), nil
}

// Update mengganti name/email/course; field kosong berarti tidak diubah.
// enrollment_date tidak pernah tersentuh.
func (s *StudentService) Update(ctx context.Context, id string, in UpdateStudentInput) (models.UserDTO, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.UserDTO{}, ErrBadRequest{Err: err}
	}

	current, err := s.repo.GetStudentByID(ctx, id)
	if err != nil {
		return models.UserDTO{}, mapRepoErr(err)
	}

	name, email, course := current.Name, current.Email, current.Course
	if in.Name != "" {
		name = in.Name
	}
	if in.Course != "" {
		course = in.Course
	}
	if in.Email != "" && in.Email != current.Email {
		exists, err := s.repo.StudentEmailExists(ctx, in.Email)
		if err != nil {
			return models.UserDTO{}, err
		}
		if exists {
			return models.UserDTO{}, ErrConflict{Msg: "Email already exists"}
		}
		email = in.Email
	}

	updated, err := s.repo.UpdateStudent(ctx, repositories.UpdateStudentParams{
		ID:     id,
		Name:   name,
		Email:  email,
		Course: course,
	})
	if err != nil {
		return models.UserDTO{}, mapRepoErr(err)
	}
	return updated.Principal().ToUserDTO(), nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// Dashboard untuk student yang sedang login: profil + ringkasan request.
func (s *StudentService) Dashboard(ctx context.Context, student models.Principal) (DashboardDTO, error) {
	total, pending, err := s.reqRepo.CountByStudent(ctx, student.ID)
	if err != nil {
		return DashboardDTO{}, err
	}
	return DashboardDTO{
		User:            student.ToUserDTO(),
		TotalRequests:   total,
		PendingRequests: pending,
	}, nil
}

func mapRepoErr(err error) error {
	var notFound repositories.ErrNotFound
	if errors.As(err, &notFound) {
		return ErrNotFoundResource{Msg: notFound.Message}
	}
	return err
}
