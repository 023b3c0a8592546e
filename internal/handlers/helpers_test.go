package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/student_admin_backend_go/internal/middleware"
	"github.com/campushq/student_admin_backend_go/internal/models"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/internal/services"
	"github.com/campushq/student_admin_backend_go/pkg/authutil"
	myvalidator "github.com/campushq/student_admin_backend_go/pkg/validator"
)

const testSecret = "test-secret"

// ---- fake principal repo ----

type fakePrincipals struct {
	mu       sync.Mutex
	seq      int
	admins   map[string]models.Admin
	students map[string]models.Student
}

func newFakePrincipals() *fakePrincipals {
	return &fakePrincipals{
		admins:   map[string]models.Admin{},
		students: map[string]models.Student{},
	}
}

func (f *fakePrincipals) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakePrincipals) GetAdminByID(_ context.Context, id string) (models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.admins[id]; ok {
		return a, nil
	}
	return models.Admin{}, repositories.ErrNotFound{Message: "admin not found"}
}

func (f *fakePrincipals) GetAdminByEmail(_ context.Context, email string) (models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Admin{}, repositories.ErrNotFound{Message: "admin not found"}
}

func (f *fakePrincipals) AdminEmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePrincipals) CreateAdmin(_ context.Context, p repositories.CreateAdminParams) (models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.Admin{
		ID:           f.nextID("admin"),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	f.admins[a.ID] = a
	return a, nil
}

func (f *fakePrincipals) GetStudentByID(_ context.Context, id string) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return models.Student{}, repositories.ErrNotFound{Message: "student not found"}
}

func (f *fakePrincipals) GetStudentByEmail(_ context.Context, email string) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.Email == email {
			return s, nil
		}
	}
	return models.Student{}, repositories.ErrNotFound{Message: "student not found"}
}

func (f *fakePrincipals) StudentEmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePrincipals) CreateStudent(_ context.Context, p repositories.CreateStudentParams) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	course := p.Course
	if course == "" {
		course = models.DefaultCourse
	}
	now := time.Now()
	s := models.Student{
		ID:             f.nextID("student"),
		Name:           p.Name,
		Email:          p.Email,
		PasswordHash:   p.PasswordHash,
		Course:         course,
		EnrollmentDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.students[s.ID] = s
	return s, nil
}

func (f *fakePrincipals) ListStudents(_ context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePrincipals) UpdateStudent(_ context.Context, p repositories.UpdateStudentParams) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[p.ID]
	if !ok {
		return models.Student{}, repositories.ErrNotFound{Message: "student not found"}
	}
	s.Name, s.Email, s.Course = p.Name, p.Email, p.Course
	s.UpdatedAt = time.Now()
	f.students[p.ID] = s
	return s, nil
}

func (f *fakePrincipals) DeleteStudent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.students[id]; !ok {
		return repositories.ErrNotFound{Message: "student not found"}
	}
	delete(f.students, id)
	return nil
}

func (f *fakePrincipals) setStudentHash(id, hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		s.PasswordHash = hash
		f.students[id] = s
	}
}

func (f *fakePrincipals) studentHash(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.students[id].PasswordHash
}

// ---- fake password request repo ----

type fakeRequests struct {
	mu         sync.Mutex
	seq        int
	requests   map[string]models.PasswordRequest
	principals *fakePrincipals
}

func newFakeRequests(p *fakePrincipals) *fakeRequests {
	return &fakeRequests{requests: map[string]models.PasswordRequest{}, principals: p}
}

func (f *fakeRequests) Create(_ context.Context, p repositories.CreatePasswordRequestParams) (models.PasswordRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	req := models.PasswordRequest{
		ID:              fmt.Sprintf("req-%d", f.seq),
		StudentID:       p.StudentID,
		StudentName:     p.StudentName,
		StudentEmail:    p.StudentEmail,
		NewPasswordHash: p.NewPasswordHash,
		Status:          models.RequestStatusPending,
		Reason:          p.Reason,
		RequestedAt:     time.Date(2024, 1, 1, 0, 0, 0, f.seq, time.UTC),
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRequests) GetByID(_ context.Context, id string) (models.PasswordRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return models.PasswordRequest{}, repositories.ErrNotFound{Message: "password change request not found"}
	}
	return req, nil
}

func (f *fakeRequests) ListAll(_ context.Context, statusFilter string) ([]models.PasswordRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PasswordRequest, 0)
	for _, req := range f.requests {
		if statusFilter == "" || req.Status == statusFilter {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequests) ListByStudent(_ context.Context, studentID string) ([]models.PasswordRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PasswordRequest, 0)
	for _, req := range f.requests {
		if req.StudentID == studentID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequests) Approve(_ context.Context, p repositories.ProcessRequestParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[p.RequestID]
	if !ok {
		return repositories.ErrNotFound{Message: "password change request not found"}
	}
	if req.Status != models.RequestStatusPending {
		return repositories.ErrAlreadyProcessed{Message: "request has already been processed"}
	}
	req.Status = models.RequestStatusApproved
	req.AdminID = &p.AdminID
	req.AdminName = &p.AdminName
	processedAt := p.ProcessedAt
	req.ProcessedAt = &processedAt
	f.requests[p.RequestID] = req
	f.principals.setStudentHash(req.StudentID, req.NewPasswordHash)
	return nil
}

func (f *fakeRequests) Reject(_ context.Context, p repositories.ProcessRequestParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[p.RequestID]
	if !ok {
		return repositories.ErrNotFound{Message: "password change request not found"}
	}
	if req.Status != models.RequestStatusPending {
		return repositories.ErrAlreadyProcessed{Message: "request has already been processed"}
	}
	req.Status = models.RequestStatusRejected
	req.AdminID = &p.AdminID
	req.AdminName = &p.AdminName
	req.Reason = p.Reason
	processedAt := p.ProcessedAt
	req.ProcessedAt = &processedAt
	f.requests[p.RequestID] = req
	return nil
}

func (f *fakeRequests) CountByStudent(_ context.Context, studentID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total, pending := 0, 0
	for _, req := range f.requests {
		if req.StudentID != studentID {
			continue
		}
		total++
		if req.Status == models.RequestStatusPending {
			pending++
		}
	}
	return total, pending, nil
}

// ---- app wiring ----

func newTestApp(principals *fakePrincipals, requests *fakeRequests) *fiber.App {
	v := myvalidator.New()
	studentSvc := services.NewStudentService(principals, requests, v, bcrypt.MinCost)
	requestSvc := services.NewPasswordRequestService(requests, v, bcrypt.MinCost)

	authHandler := NewAuthHandler(testSecret, time.Hour, bcrypt.MinCost, principals, studentSvc)
	studentHandler := NewStudentHandler(studentSvc)
	requestHandler := NewPasswordRequestHandler(requestSvc)

	app := fiber.New()
	protect := middleware.Protect(testSecret, principals)
	adminOnly := middleware.RequireRole("admin")
	studentOnly := middleware.RequireRole("student")
	anyUser := middleware.RequireRole("admin", "student")

	api := app.Group("/api/v1")
	api.Post("/auth/student/register", authHandler.RegisterStudent)
	api.Post("/auth/student/login", authHandler.LoginStudent)
	api.Post("/auth/admin/register", authHandler.RegisterAdmin)
	api.Post("/auth/admin/login", authHandler.LoginAdmin)
	api.Get("/auth/me", protect, anyUser, authHandler.Me)
	api.Put("/auth/profile", protect, studentOnly, authHandler.UpdateProfile)

	api.Post("/password-requests", protect, studentOnly, requestHandler.Submit)
	api.Get("/password-requests/mine", protect, studentOnly, requestHandler.ListMine)
	api.Get("/password-requests", protect, adminOnly, requestHandler.ListAll)
	api.Put("/password-requests/:requestId/approve", protect, adminOnly, requestHandler.Approve)
	api.Put("/password-requests/:requestId/reject", protect, adminOnly, requestHandler.Reject)

	api.Get("/students/dashboard/me", protect, studentOnly, studentHandler.Dashboard)
	api.Get("/students", protect, adminOnly, studentHandler.List)
	api.Get("/students/:id", protect, adminOnly, studentHandler.Get)
	api.Post("/students", protect, adminOnly, studentHandler.Create)
	api.Put("/students/:id", protect, adminOnly, studentHandler.Update)
	api.Delete("/students/:id", protect, adminOnly, studentHandler.Delete)

	return app
}

func seedStudent(t *testing.T, f *fakePrincipals, name, email, password string) models.Student {
	t.Helper()
	hash, err := authutil.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.CreateStudent(context.Background(), repositories.CreateStudentParams{
		Name: name, Email: email, PasswordHash: hash,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func seedAdmin(t *testing.T, f *fakePrincipals, name, email, password string) models.Admin {
	t.Helper()
	hash, err := authutil.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a, err := f.CreateAdmin(context.Background(), repositories.CreateAdminParams{
		Name: name, Email: email, PasswordHash: hash,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func bearerFor(t *testing.T, id, role string) string {
	t.Helper()
	token, err := authutil.NewAccessToken(testSecret, id, role, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("invalid JSON body %q: %v", raw, err)
		}
	}
	return resp, out
}
