package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakePatientRepo, *fakeDoctorRepo, *auth.JWTManager) {
	t.Helper()

	jwtCfg := config.JWTConfig{
		Secret:          "unit-test-secret-unit-test-secret!!",
		Issuer:          "carebook-test",
		AdminTokenTTL:   24 * time.Hour,
		DoctorTokenTTL:  24 * time.Hour,
		PatientTokenTTL: 7 * 24 * time.Hour,
	}
	jwt := auth.NewJWTManager(jwtCfg)
	admin := config.AdminConfig{Email: "admin@carebook.test", Password: "super-secret"}

	patients := newFakePatientRepo()
	doctors := newFakeDoctorRepo()
	svc := NewAuthService(patients, doctors, jwt, admin, testAudit(), testCollector(), zap.NewNop())
	return svc, patients, doctors, jwt
}

func TestRegisterPatient(t *testing.T) {
	svc, patients, _, jwt := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.RegisterPatient(ctx, &patient.RegisterCommand{
		Name: "Asha", Email: "Asha@Example.com", Password: "password1",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := jwt.Verify(token, domain.RolePatient)
	if err != nil {
		t.Fatalf("returned token must verify as patient: %v", err)
	}

	p, err := patients.GetByID(ctx, claims.Subject)
	if err != nil {
		t.Fatalf("patient not persisted: %v", err)
	}
	if p.Email != "asha@example.com" {
		t.Errorf("expected lowercased email, got %q", p.Email)
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	tests := []struct {
		name string
		cmd  patient.RegisterCommand
	}{
		{"missing name", patient.RegisterCommand{Email: "a@b.c", Password: "password1"}},
		{"missing email", patient.RegisterCommand{Name: "A", Password: "password1"}},
		{"short password", patient.RegisterCommand{Name: "A", Email: "a@b.c", Password: "short"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterPatient(context.Background(), &tc.cmd, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRegisterPatient_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	cmd := &patient.RegisterCommand{Name: "Asha", Email: "asha@example.com", Password: "password1"}
	if _, err := svc.RegisterPatient(ctx, cmd, ""); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.RegisterPatient(ctx, cmd, "")
	if !errors.Is(err, patient.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterPatient_CountsRegistrations(t *testing.T) {
	collector := testCollector()
	jwt := auth.NewJWTManager(config.JWTConfig{
		Secret: "unit-test-secret-unit-test-secret!!", Issuer: "carebook-test",
		PatientTokenTTL: time.Hour,
	})
	svc := NewAuthService(newFakePatientRepo(), newFakeDoctorRepo(), jwt, config.AdminConfig{}, testAudit(), collector, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.RegisterPatient(ctx, &patient.RegisterCommand{
		Name: "Asha", Email: "asha@example.com", Password: "password1",
	}, ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	// A rejected duplicate must not count.
	_, _ = svc.RegisterPatient(ctx, &patient.RegisterCommand{
		Name: "Asha", Email: "asha@example.com", Password: "password1",
	}, "")

	if got := testutil.ToFloat64(collector.PatientsRegisteredTotal); got != 1 {
		t.Errorf("registrations counter = %v, want 1", got)
	}
}

func TestLoginPatient(t *testing.T) {
	svc, patients, _, jwt := newAuthFixture(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	p := &patient.Patient{Name: "Asha", Email: "asha@example.com", PasswordHash: string(hash)}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatalf("seeding patient: %v", err)
	}

	token, err := svc.LoginPatient(ctx, "asha@example.com", "password1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := jwt.Verify(token, domain.RolePatient); err != nil {
		t.Errorf("token must verify as patient: %v", err)
	}

	if _, err := svc.LoginPatient(ctx, "asha@example.com", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.LoginPatient(ctx, "nobody@example.com", "password1", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginDoctor(t *testing.T) {
	svc, _, doctors, jwt := newAuthFixture(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	d := &doctor.Doctor{Name: "Dr. Rao", Email: "rao@carebook.test", PasswordHash: string(hash), Available: true}
	if err := doctors.Create(ctx, d); err != nil {
		t.Fatalf("seeding doctor: %v", err)
	}

	token, err := svc.LoginDoctor(ctx, "rao@carebook.test", "password1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := jwt.Verify(token, domain.RoleDoctor)
	if err != nil {
		t.Fatalf("token must verify as doctor: %v", err)
	}
	if claims.Subject != d.ID {
		t.Errorf("expected subject %s, got %s", d.ID, claims.Subject)
	}
}

func TestLoginAdmin(t *testing.T) {
	svc, _, _, jwt := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.LoginAdmin(ctx, "admin@carebook.test", "super-secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := jwt.Verify(token, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("token must verify as admin: %v", err)
	}
	if claims.Email != "admin@carebook.test" {
		t.Errorf("expected admin email in claims, got %q", claims.Email)
	}

	if _, err := svc.LoginAdmin(ctx, "admin@carebook.test", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.LoginAdmin(ctx, "other@carebook.test", "super-secret", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
