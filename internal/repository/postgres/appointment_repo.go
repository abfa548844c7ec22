package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carebook/carebook/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appointment.ErrDuplicateBooking
		}
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Select("status", "paid", "cancelled_at", "completed_at").
		Updates(a)
	if res.Error != nil {
		return fmt.Errorf("updating appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing patient appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctor appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListLatest(ctx context.Context, n int) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing latest appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ExistsActive(ctx context.Context, patientID, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND slot_date = ? AND slot_time = ? AND status <> ?",
			patientID, doctorID, slotDate, slotTime, appointment.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking duplicate booking: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting appointments: %w", err)
	}
	return count, nil
}
