package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

type PasswordRequest struct {
	ID              string
	StudentID       string
	StudentName     string
	StudentEmail    string
	NewPasswordHash string
	Status          string
	Reason          string
	AdminID         *string
	AdminName       *string
	RequestedAt     time.Time
	ProcessedAt     *time.Time
}

type SubmitPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
	Reason      string `json:"reason"`
}

type RejectPasswordRequest struct {
	Reason string `json:"reason"`
}

// PasswordRequestDTO: bentuk response; hash password TIDAK pernah ikut.
type PasswordRequestDTO struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"studentId"`
	StudentName  string     `json:"studentName"`
	StudentEmail string     `json:"studentEmail"`
	Status       string     `json:"status"`
	Reason       string     `json:"reason"`
	AdminID      *string    `json:"adminId"`
	AdminName    *string    `json:"adminName"`
	RequestedAt  time.Time  `json:"requestedAt"`
	ProcessedAt  *time.Time `json:"processedAt"`
}

func (r PasswordRequest) ToDTO() PasswordRequestDTO {
	return PasswordRequestDTO{
		ID:           r.ID,
		StudentID:    r.StudentID,
		StudentName:  r.StudentName,
		StudentEmail: r.StudentEmail,
		Status:       r.Status,
		Reason:       r.Reason,
		AdminID:      r.AdminID,
		AdminName:    r.AdminName,
		RequestedAt:  r.RequestedAt,
		ProcessedAt:  r.ProcessedAt,
	}
}
