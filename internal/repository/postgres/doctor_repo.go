package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carebook/carebook/internal/domain/doctor"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return doctor.ErrDoctorExists
		}
		return fmt.Errorf("inserting doctor: %w", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("querying doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := r.db.WithContext(ctx).First(&d, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("querying doctor by email: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *doctor.Doctor) error {
	res := r.db.WithContext(ctx).
		Model(&doctor.Doctor{}).
		Where("id = ?", d.ID).
		Select("name", "email", "speciality", "degree", "experience", "about", "fee", "image", "available", "address").
		Updates(d)
	if res.Error != nil {
		return fmt.Errorf("updating doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

// UpdateSlots writes the slot map guarded by the version counter. A zero
// RowsAffected means another writer bumped the version first.
func (r *DoctorRepository) UpdateSlots(ctx context.Context, id uuid.UUID, slots doctor.SlotMap, expectedVersion int) error {
	res := r.db.WithContext(ctx).
		Model(&doctor.Doctor{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"booked_slots": slots,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("updating doctor slots: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("checking doctor existence: %w", err)
		}
		if count == 0 {
			return doctor.ErrDoctorNotFound
		}
		return doctor.ErrVersionConflict
	}
	return nil
}

func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting doctors: %w", err)
	}
	return count, nil
}
