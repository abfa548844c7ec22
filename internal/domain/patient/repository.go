package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrEmailExists on duplicate email.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if the patient does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	GetByEmail(ctx context.Context, email string) (*Patient, error)

	// Update persists the full patient record.
	Update(ctx context.Context, p *Patient) error

	Count(ctx context.Context) (int64, error)
}
