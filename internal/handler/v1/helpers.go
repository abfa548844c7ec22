package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/imagestore"
)

// Every response carries the success flag the booking clients key off.
// Payloads ride alongside it under their own keys.
func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func respondCreated(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"fields":  validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, doctor.ErrDoctorExists),
		errors.Is(err, patient.ErrEmailExists),
		errors.Is(err, doctor.ErrSlotAlreadyBooked),
		errors.Is(err, appointment.ErrDuplicateBooking),
		errors.Is(err, appointment.ErrAlreadyCancelled),
		errors.Is(err, appointment.ErrAlreadyCompleted):
		respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, doctor.ErrDoctorUnavailable),
		errors.Is(err, patient.ErrInvalidGender),
		errors.Is(err, imagestore.ErrUnsupportedType),
		errors.Is(err, imagestore.ErrTooLarge):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "access denied")

	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")

	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func parseUUID(c *gin.Context, raw, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
