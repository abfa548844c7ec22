package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/imagestore"
)

type DoctorHandler struct {
	auth      *service.AuthService
	doctors   *service.DoctorService
	booking   *service.BookingService
	dashboard *service.DashboardService
	images    imagestore.Uploader
	log       *zap.Logger
}

func NewDoctorHandler(
	auth *service.AuthService,
	doctors *service.DoctorService,
	booking *service.BookingService,
	dashboard *service.DashboardService,
	images imagestore.Uploader,
	log *zap.Logger,
) *DoctorHandler {
	return &DoctorHandler{
		auth:      auth,
		doctors:   doctors,
		booking:   booking,
		dashboard: dashboard,
		images:    images,
		log:       log,
	}
}

func (h *DoctorHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.LoginDoctor(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"token": token})
}

// List is the public directory: no auth, and contact email is stripped.
func (h *DoctorHandler) List(c *gin.Context) {
	list, err := h.doctors.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, d := range list {
		out = append(out, publicDoctor(d))
	}
	respondOK(c, gin.H{"doctors": out})
}

func publicDoctor(d *doctor.Doctor) gin.H {
	return gin.H{
		"id":          d.ID,
		"name":        d.Name,
		"speciality":  d.Speciality,
		"degree":      d.Degree,
		"experience":  d.Experience,
		"about":       d.About,
		"fee":         d.Fee,
		"image":       d.Image,
		"available":   d.Available,
		"address":     d.Address,
		"slotsBooked": d.BookedSlots,
	}
}

func (h *DoctorHandler) Profile(c *gin.Context) {
	actor := actorFromContext(c)

	d, err := h.doctors.GetDoctor(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"profile": d})
}

// UpdateProfile applies the multipart form fields that are present and
// leaves the rest untouched.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	actor := actorFromContext(c)
	cmd := &doctor.UpdateProfileCommand{}

	if v, ok := c.GetPostForm("name"); ok {
		cmd.Name = &v
	}
	if v, ok := c.GetPostForm("about"); ok {
		cmd.About = &v
	}
	if v, ok := c.GetPostForm("fee"); ok {
		fee, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "fee must be a number")
			return
		}
		cmd.Fee = &fee
	}
	if v, ok := c.GetPostForm("available"); ok {
		available, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "available must be a boolean")
			return
		}
		cmd.Available = &available
	}
	line1, ok1 := c.GetPostForm("address1")
	line2, ok2 := c.GetPostForm("address2")
	if ok1 || ok2 {
		cmd.Address = &doctor.Address{Line1: line1, Line2: line2}
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

	d, err := h.doctors.UpdateProfile(c.Request.Context(), actor.ID, cmd, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "profile updated", "profile": d})
}

func (h *DoctorHandler) ChangeAvailability(c *gin.Context) {
	actor := actorFromContext(c)

	available, err := h.doctors.ToggleAvailability(c.Request.Context(), actor.ID, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "availability changed", "available": available})
}

func (h *DoctorHandler) Appointments(c *gin.Context) {
	actor := actorFromContext(c)

	appts, err := h.booking.ListForDoctor(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

func (h *DoctorHandler) CancelAppointment(c *gin.Context) {
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

func (h *DoctorHandler) CompleteAppointment(c *gin.Context) {
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

func (h *DoctorHandler) Dashboard(c *gin.Context) {
	actor := actorFromContext(c)

	dash, err := h.dashboard.DoctorDashboard(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"dashboard": dash})
}
