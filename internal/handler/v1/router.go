package v1

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/pkg/auth"
	"github.com/carebook/carebook/pkg/metrics"
)

type RouterDeps struct {
	Config    *config.Config
	JWT       *auth.JWTManager
	Admin     *AdminHandler
	Doctor    *DoctorHandler
	User      *UserHandler
	Collector *metrics.Collector
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Log))
	r.Use(Metrics(deps.Collector))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     deps.Config.CORS.AllowedMethods,
		AllowHeaders:     deps.Config.CORS.AllowedHeaders,
		MaxAge:           deps.Config.CORS.MaxAge,
		AllowCredentials: true,
	}))

	// Uploaded images are served as plain static files.
	r.Static(deps.Config.Uploads.BaseURL, deps.Config.Uploads.Dir)

	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "status": "ok"})
	})

	api := r.Group("/api")

	admin := api.Group("/admin")
	{
		admin.POST("/login", deps.Admin.Login)

		authed := admin.Group("", RequireRole(deps.JWT, domain.RoleAdmin))
		authed.POST("/add-doctor", deps.Admin.AddDoctor)
		authed.POST("/all-doctors", deps.Admin.AllDoctors)
		authed.POST("/change-availability", deps.Admin.ChangeAvailability)
		authed.GET("/appointments", deps.Admin.Appointments)
		authed.PUT("/cancel-appointment", deps.Admin.CancelAppointment)
		authed.PUT("/complete-appointment", deps.Admin.CompleteAppointment)
		authed.GET("/dashboard", deps.Admin.Dashboard)
	}

	doctor := api.Group("/doctor")
	{
		doctor.POST("/login", deps.Doctor.Login)
		doctor.GET("/list", deps.Doctor.List)

		authed := doctor.Group("", RequireRole(deps.JWT, domain.RoleDoctor))
		authed.GET("/profile", deps.Doctor.Profile)
		authed.PUT("/update-profile", deps.Doctor.UpdateProfile)
		authed.POST("/change-availability", deps.Doctor.ChangeAvailability)
		authed.GET("/appointments", deps.Doctor.Appointments)
		authed.POST("/cancel-appointment", deps.Doctor.CancelAppointment)
		authed.POST("/complete-appointment", deps.Doctor.CompleteAppointment)
		authed.GET("/dashboard", deps.Doctor.Dashboard)
	}

	user := api.Group("/user")
	{
		user.POST("/register", deps.User.Register)
		user.POST("/login", deps.User.Login)
		user.GET("/available-slots", deps.User.AvailableSlots)

		authed := user.Group("", RequireRole(deps.JWT, domain.RolePatient))
		authed.GET("/get-profile", deps.User.GetProfile)
		authed.POST("/update-profile", deps.User.UpdateProfile)
		authed.POST("/book-appointment", deps.User.BookAppointment)
		authed.GET("/appointments", deps.User.Appointments)
		authed.POST("/cancel-appointment", deps.User.CancelAppointment)
		authed.PUT("/complete-appointment", deps.User.CompleteAppointment)
		authed.POST("/pay-appointment", deps.User.PayAppointment)
	}

	return r
}
