package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/pkg/auth"
	"github.com/carebook/carebook/pkg/metrics"
)

const minPasswordLength = 8

type AuthService struct {
	patients  patient.Repository
	doctors   doctor.Repository
	jwt       *auth.JWTManager
	admin     config.AdminConfig
	auditSvc  *AuditService
	collector *metrics.Collector
	log       *zap.Logger
}

func NewAuthService(
	patients patient.Repository,
	doctors doctor.Repository,
	jwt *auth.JWTManager,
	admin config.AdminConfig,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		patients:  patients,
		doctors:   doctors,
		jwt:       jwt,
		admin:     admin,
		auditSvc:  auditSvc,
		collector: collector,
		log:       log,
	}
}

// RegisterPatient creates a patient account and returns a bearer token,
// so registration doubles as first login.
func (s *AuthService) RegisterPatient(ctx context.Context, cmd *patient.RegisterCommand, ip string) (string, error) {
	var errs []string
	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" {
		errs = append(errs, "email is required")
	}
	if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	p := &patient.Patient{
		Name:         strings.TrimSpace(cmd.Name),
		Email:        email,
		PasswordHash: string(hash),
		Gender:       patient.GenderNotSelected,
	}

	if err := s.patients.Create(ctx, p); err != nil {
		return "", err
	}

	s.collector.PatientsRegisteredTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: p.ID.String(), ActorRole: string(domain.RolePatient),
		Action: "create", ResourceType: "patient", ResourceID: p.ID.String(), IPAddress: ip,
	})
	s.log.Info("patient registered", zap.String("patient_id", p.ID.String()))

	return s.jwt.IssuePatientToken(p.ID, p.Email)
}

func (s *AuthService) LoginPatient(ctx context.Context, email, password, ip string) (string, error) {
	p, err := s.patients.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Dummy hash comparison keeps response time flat so failed
		// logins do not reveal whether the email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed patient login", zap.String("email", email), zap.String("ip", ip))
		return "", ErrInvalidCredentials
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: p.ID.String(), ActorRole: string(domain.RolePatient),
		Action: "login", ResourceType: "patient", ResourceID: p.ID.String(), IPAddress: ip,
	})

	return s.jwt.IssuePatientToken(p.ID, p.Email)
}

func (s *AuthService) LoginDoctor(ctx context.Context, email, password, ip string) (string, error) {
	d, err := s.doctors.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed doctor login", zap.String("email", email), zap.String("ip", ip))
		return "", ErrInvalidCredentials
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: d.ID.String(), ActorRole: string(domain.RoleDoctor),
		Action: "login", ResourceType: "doctor", ResourceID: d.ID.String(), IPAddress: ip,
	})

	return s.jwt.IssueDoctorToken(d.ID, d.Email)
}

// LoginAdmin checks the static configured admin credentials.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password, ip string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !emailOK || !passOK {
		s.log.Warn("failed admin login", zap.String("email", email), zap.String("ip", ip))
		return "", ErrInvalidCredentials
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorRole: string(domain.RoleAdmin),
		Action:    "login", ResourceType: "admin", ResourceID: email, IPAddress: ip,
	})

	return s.jwt.IssueAdminToken(email)
}
