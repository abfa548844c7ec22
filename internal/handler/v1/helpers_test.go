package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"doctor not found", doctor.ErrDoctorNotFound, http.StatusNotFound},
		{"appointment not found", appointment.ErrAppointmentNotFound, http.StatusNotFound},
		{"slot taken", doctor.ErrSlotAlreadyBooked, http.StatusConflict},
		{"duplicate booking", appointment.ErrDuplicateBooking, http.StatusConflict},
		{"already cancelled", appointment.ErrAlreadyCancelled, http.StatusConflict},
		{"email exists", patient.ErrEmailExists, http.StatusConflict},
		{"doctor unavailable", doctor.ErrDoctorUnavailable, http.StatusBadRequest},
		{"validation", &service.ValidationError{Fields: []string{"name is required"}}, http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tc.err)

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			if !strings.Contains(w.Body.String(), `"success":false`) {
				t.Errorf("body must carry success false: %s", w.Body.String())
			}
		})
	}
}
