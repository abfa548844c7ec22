package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/patient"
)

type PatientService struct {
	repo     patient.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *PatientService) GetProfile(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies partial updates to the patient's own profile.
func (s *PatientService) UpdateProfile(ctx context.Context, id uuid.UUID, cmd *patient.UpdateProfileCommand, ip string) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		p.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Phone != nil {
		p.Phone = *cmd.Phone
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	if cmd.DateOfBirth != nil {
		p.DateOfBirth = NormalizeDOB(*cmd.DateOfBirth)
	}
	if cmd.Gender != nil {
		if !cmd.Gender.IsValid() {
			return nil, patient.ErrInvalidGender
		}
		p.Gender = *cmd.Gender
	}
	if cmd.Image != nil {
		p.Image = *cmd.Image
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: id.String(), ActorRole: string(domain.RolePatient),
		Action: "update", ResourceType: "patient", ResourceID: id.String(), IPAddress: ip,
	})
	s.log.Info("patient profile updated", zap.String("patient_id", id.String()))

	return p, nil
}

// NormalizeDOB converts DD-MM-YYYY input, which the booking site's date
// picker produces, into the stored YYYY-MM-DD form. Anything else passes
// through unchanged.
func NormalizeDOB(dob string) string {
	parts := strings.Split(dob, "-")
	if len(parts) == 3 && len(parts[0]) == 2 && len(parts[2]) == 4 {
		return parts[2] + "-" + parts[1] + "-" + parts[0]
	}
	return dob
}
