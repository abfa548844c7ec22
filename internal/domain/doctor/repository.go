package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new doctor. Returns ErrDoctorExists on duplicate email.
	Create(ctx context.Context, d *Doctor) error

	// GetByID returns ErrDoctorNotFound if the doctor does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	GetByEmail(ctx context.Context, email string) (*Doctor, error)

	// List returns all doctors, newest first.
	List(ctx context.Context) ([]*Doctor, error)

	// Update persists profile fields. Slot state goes through UpdateSlots.
	Update(ctx context.Context, d *Doctor) error

	// UpdateSlots writes the booked-slot map with a compare-and-swap on
	// expectedVersion. Returns ErrVersionConflict if another writer got
	// there first; callers re-read and retry.
	UpdateSlots(ctx context.Context, id uuid.UUID, slots SlotMap, expectedVersion int) error

	Count(ctx context.Context) (int64, error)
}
