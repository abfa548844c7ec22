package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if the appointment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists status, paid flag and lifecycle timestamps.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// ListByPatient returns a patient's appointments, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)

	// ListByDoctor returns a doctor's appointments, newest first.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// ListAll returns every appointment, newest first.
	ListAll(ctx context.Context) ([]*Appointment, error)

	// ListLatest returns the n most recently created appointments,
	// newest first, bounding the query server-side.
	ListLatest(ctx context.Context, n int) ([]*Appointment, error)

	// ExistsActive reports whether a non-cancelled appointment already
	// matches (patient, doctor, date, time). The duplicate-booking check.
	ExistsActive(ctx context.Context, patientID, doctorID uuid.UUID, slotDate, slotTime string) (bool, error)

	Count(ctx context.Context) (int64, error)
}
