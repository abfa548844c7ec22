package patient

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidGender   = errors.New("invalid gender value")
)
