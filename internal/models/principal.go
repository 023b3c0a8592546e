package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

const DefaultCourse = "MERN Bootcamp"

type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Student struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Course         string
	EnrollmentDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal adalah aktor yang sudah terautentikasi: admin atau student.
// Role menentukan field mana yang terisi (Course/EnrollmentDate hanya student).
type Principal struct {
	ID             string
	Name           string
	Email          string
	Role           string
	Course         string
	EnrollmentDate *time.Time
}

func (p Principal) ToUserDTO() UserDTO {
	dto := UserDTO{
		ID:     p.ID,
		Name:   p.Name,
		Email:  p.Email,
		Role:   p.Role,
		Course: p.Course,
	}
	if p.EnrollmentDate != nil {
		s := p.EnrollmentDate.Format(time.RFC3339)
		dto.EnrollmentDate = &s
	}
	return dto
}

func (a Admin) Principal() Principal {
	role := a.Role
	if role == "" {
		role = RoleAdmin
	}
	return Principal{ID: a.ID, Name: a.Name, Email: a.Email, Role: role}
}

func (s Student) Principal() Principal {
	enrolled := s.EnrollmentDate
	return Principal{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Role:           RoleStudent,
		Course:         s.Course,
		EnrollmentDate: &enrolled,
	}
}
