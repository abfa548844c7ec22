package doctor

import "errors"

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorExists      = errors.New("doctor with this email already exists")
	ErrDoctorUnavailable = errors.New("doctor is not available for booking")
	ErrSlotAlreadyBooked = errors.New("slot is already booked")
	ErrVersionConflict   = errors.New("doctor record was modified concurrently")
)
