package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/imagestore"
)

type UserHandler struct {
	auth     *service.AuthService
	patients *service.PatientService
	booking  *service.BookingService
	images   imagestore.Uploader
	log      *zap.Logger
}

func NewUserHandler(
	auth *service.AuthService,
	patients *service.PatientService,
	booking *service.BookingService,
	images imagestore.Uploader,
	log *zap.Logger,
) *UserHandler {
	return &UserHandler{
		auth:     auth,
		patients: patients,
		booking:  booking,
		images:   images,
		log:      log,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.RegisterPatient(c.Request.Context(), &patient.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, gin.H{"token": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.LoginPatient(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"token": token})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor := actorFromContext(c)

	p, err := h.patients.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"profile": p})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor := actorFromContext(c)
	cmd := &patient.UpdateProfileCommand{}

	if v, ok := c.GetPostForm("name"); ok {
		cmd.Name = &v
	}
	if v, ok := c.GetPostForm("phone"); ok {
		cmd.Phone = &v
	}
	if v, ok := c.GetPostForm("dob"); ok {
		cmd.DateOfBirth = &v
	}
	if v, ok := c.GetPostForm("gender"); ok {
		g := patient.Gender(v)
		cmd.Gender = &g
	}
	line1, ok1 := c.GetPostForm("address1")
	line2, ok2 := c.GetPostForm("address2")
	if ok1 || ok2 {
		cmd.Address = &patient.Address{Line1: line1, Line2: line2}
	}

	if file, err := c.FormFile("image"); err == nil {
		src, err := file.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "unreadable image upload")
			return
		}
		defer src.Close()

		url, err := h.images.Upload(c.Request.Context(), file.Filename, src)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		cmd.Image = &url
	}

	p, err := h.patients.UpdateProfile(c.Request.Context(), actor.ID, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "profile updated", "profile": p})
}

// AvailableSlots is public so the booking page can show openings before
// the visitor signs in.
func (h *UserHandler) AvailableSlots(c *gin.Context) {
	id, ok := parseUUID(c, c.Query("docId"), "docId")
	if !ok {
		return
	}

	slots, err := h.booking.AvailableSlots(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"slots": slots})
}

type bookAppointmentRequest struct {
	DoctorID string `json:"docId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required"`
	SlotTime string `json:"slotTime" binding:"required"`
}

func (h *UserHandler) BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	docID, ok := parseUUID(c, req.DoctorID, "docId")
	if !ok {
		return
	}

	actor := actorFromContext(c)
	a, err := h.booking.BookAppointment(c.Request.Context(), actor.ID, docID, req.SlotDate, req.SlotTime, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, gin.H{"message": "appointment booked", "appointment": a})
}

func (h *UserHandler) Appointments(c *gin.Context) {
	actor := actorFromContext(c)

	appts, err := h.booking.ListForPatient(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

func (h *UserHandler) CancelAppointment(c *gin.Context) {
	var req appointmentActionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.AppointmentID, "appointmentId")
	if !ok {
		return
	}

	if _, err := h.booking.CancelAppointment(c.Request.Context(), id, actorFromContext(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, "appointment cancelled")
}

func (h *UserHandler) CompleteAppointment(c *gin.Context) {
	var req appointmentActionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.AppointmentID, "appointmentId")
	if !ok {
		return
	}

	if _, err := h.booking.CompleteAppointment(c.Request.Context(), id, actorFromContext(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, "appointment completed")
}

func (h *UserHandler) PayAppointment(c *gin.Context) {
	var req appointmentActionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.AppointmentID, "appointmentId")
	if !ok {
		return
	}

	if _, err := h.booking.MarkPaid(c.Request.Context(), id, actorFromContext(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, "payment recorded")
}
