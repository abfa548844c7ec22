package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/imagestore"
)

type AdminHandler struct {
	auth      *service.AuthService
	doctors   *service.DoctorService
	booking   *service.BookingService
	dashboard *service.DashboardService
	images    imagestore.Uploader
	log       *zap.Logger
}

func NewAdminHandler(
	auth *service.AuthService,
	doctors *service.DoctorService,
	booking *service.BookingService,
	dashboard *service.DashboardService,
	images imagestore.Uploader,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		auth:      auth,
		doctors:   doctors,
		booking:   booking,
		dashboard: dashboard,
		images:    images,
		log:       log,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.LoginAdmin(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"token": token})
}

// AddDoctor accepts a multipart form so the profile image rides along
// with the fields.
func (h *AdminHandler) AddDoctor(c *gin.Context) {
	fee, err := strconv.Atoi(c.PostForm("fee"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "fee must be a number")
		return
	}

	cmd := &doctor.CreateDoctorCommand{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		Speciality: c.PostForm("speciality"),
		Degree:     c.PostForm("degree"),
		Experience: c.PostForm("experience"),
		About:      c.PostForm("about"),
		Fee:        fee,
		Address: doctor.Address{
			Line1: c.PostForm("address1"),
			Line2: c.PostForm("address2"),
		},
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
		cmd.Image = url
	}

	d, err := h.doctors.AddDoctor(c.Request.Context(), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, gin.H{"message": "doctor added", "doctor": d})
}

func (h *AdminHandler) AllDoctors(c *gin.Context) {
	list, err := h.doctors.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"doctors": list})
}

type changeAvailabilityRequest struct {
	DoctorID string `json:"docId" binding:"required"`
}

func (h *AdminHandler) ChangeAvailability(c *gin.Context) {
	var req changeAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.DoctorID, "docId")
	if !ok {
		return
	}

	available, err := h.doctors.ToggleAvailability(c.Request.Context(), id, service.Actor{Role: domain.RoleAdmin}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "availability changed", "available": available})
}

func (h *AdminHandler) Appointments(c *gin.Context) {
	appts, err := h.booking.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

type appointmentActionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

func (h *AdminHandler) CancelAppointment(c *gin.Context) {
	var req appointmentActionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.AppointmentID, "appointmentId")
	if !ok {
		return
	}

	if _, err := h.booking.CancelAppointment(c.Request.Context(), id, service.Actor{Role: domain.RoleAdmin}, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, "appointment cancelled")
}

func (h *AdminHandler) CompleteAppointment(c *gin.Context) {
	var req appointmentActionRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := parseUUID(c, req.AppointmentID, "appointmentId")
	if !ok {
		return
	}

	if _, err := h.booking.CompleteAppointment(c.Request.Context(), id, service.Actor{Role: domain.RoleAdmin}, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, "appointment completed")
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dash, err := h.dashboard.AdminDashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"dashboard": dash})
}
