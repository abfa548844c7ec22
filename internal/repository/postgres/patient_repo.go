package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carebook/carebook/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return patient.ErrEmailExists
		}
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("querying patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("querying patient by email: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	res := r.db.WithContext(ctx).
		Model(&patient.Patient{}).
		Where("id = ?", p.ID).
		Select("name", "phone", "address", "date_of_birth", "gender", "image").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return count, nil
}
