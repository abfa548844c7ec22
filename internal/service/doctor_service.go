package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/doctor"
)

type DoctorService struct {
	repo     doctor.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, auditSvc: auditSvc, log: log}
}

// AddDoctor creates a doctor record. Admin-only; the handler enforces the role.
func (s *DoctorService) AddDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, ip string) (*doctor.Doctor, error) {
	if err := validateAddDoctor(cmd); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	d := &doctor.Doctor{
		Name:         strings.TrimSpace(cmd.Name),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: string(hash),
		Speciality:   cmd.Speciality,
		Degree:       cmd.Degree,
		Experience:   cmd.Experience,
		About:        cmd.About,
		Fee:          cmd.Fee,
		Image:        cmd.Image,
		Available:    true,
		Address:      cmd.Address,
		BookedSlots:  doctor.SlotMap{},
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorRole: string(domain.RoleAdmin),
		Action:    "create", ResourceType: "doctor", ResourceID: d.ID.String(), IPAddress: ip,
	})
	s.log.Info("doctor added", zap.String("doctor_id", d.ID.String()), zap.String("speciality", d.Speciality))

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDoctors returns all doctors. The handler decides how much of each
// record is exposed (the public directory strips email).
func (s *DoctorService) ListDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx)
}

// UpdateProfile applies partial profile updates. Slot state is not
// touchable through this path.
func (s *DoctorService) UpdateProfile(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateProfileCommand, actor Actor, ip string) (*doctor.Doctor, error) {
	if actor.Role == domain.RoleDoctor && actor.ID != id {
		return nil, ErrForbidden
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		d.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Speciality != nil {
		d.Speciality = *cmd.Speciality
	}
	if cmd.Degree != nil {
		d.Degree = *cmd.Degree
	}
	if cmd.Experience != nil {
		d.Experience = *cmd.Experience
	}
	if cmd.About != nil {
		d.About = *cmd.About
	}
	if cmd.Fee != nil {
		d.Fee = *cmd.Fee
	}
	if cmd.Image != nil {
		d.Image = *cmd.Image
	}
	if cmd.Address != nil {
		d.Address = *cmd.Address
	}
	if cmd.Available != nil {
		d.Available = *cmd.Available
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("updating doctor: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: actor.ID.String(), ActorRole: string(actor.Role),
		Action: "update", ResourceType: "doctor", ResourceID: id.String(), IPAddress: ip,
	})

	return d, nil
}

// ToggleAvailability flips the availability flag and returns the new value.
func (s *DoctorService) ToggleAvailability(ctx context.Context, id uuid.UUID, actor Actor, ip string) (bool, error) {
	if actor.Role == domain.RoleDoctor && actor.ID != id {
		return false, ErrForbidden
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	d.Available = !d.Available
	if err := s.repo.Update(ctx, d); err != nil {
		return false, fmt.Errorf("updating doctor: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: actor.ID.String(), ActorRole: string(actor.Role),
		Action: "update", ResourceType: "doctor", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"available":%t}`, d.Available),
	})

	return d.Available, nil
}

func validateAddDoctor(cmd *doctor.CreateDoctorCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		errs = append(errs, "email is required")
	}
	if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(cmd.Speciality) == "" {
		errs = append(errs, "speciality is required")
	}
	if strings.TrimSpace(cmd.Degree) == "" {
		errs = append(errs, "degree is required")
	}
	if strings.TrimSpace(cmd.Experience) == "" {
		errs = append(errs, "experience is required")
	}
	if cmd.Fee <= 0 {
		errs = append(errs, "fee must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
