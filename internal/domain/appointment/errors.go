package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAlreadyCancelled    = errors.New("appointment is already cancelled")
	ErrAlreadyCompleted    = errors.New("appointment is already completed")
	ErrDuplicateBooking    = errors.New("you already booked this slot")
)
