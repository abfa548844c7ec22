package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
)

// latestCount is how many recent appointments a dashboard shows.
const latestCount = 5

// AdminDashboard is the admin console's summary projection.
type AdminDashboard struct {
	Doctors      int64                      `json:"doctors"`
	Appointments int64                      `json:"appointments"`
	Patients     int64                      `json:"patients"`
	Latest       []*appointment.Appointment `json:"latestAppointments"`
}

// DoctorDashboard is one doctor's summary projection.
type DoctorDashboard struct {
	Total     int64                      `json:"total"`
	Active    int64                      `json:"active"`
	Cancelled int64                      `json:"cancelled"`
	Patients  int64                      `json:"patients"`
	Latest    []*appointment.Appointment `json:"latestAppointments"`
}

// DashboardService recomputes read-only aggregations on every call.
// Both dashboards order their "latest" list by creation time descending.
type DashboardService struct {
	doctors      doctor.Repository
	patients     patient.Repository
	appointments appointment.Repository
}

func NewDashboardService(doctors doctor.Repository, patients patient.Repository, appointments appointment.Repository) *DashboardService {
	return &DashboardService{doctors: doctors, patients: patients, appointments: appointments}
}

func (s *DashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	doctorCount, err := s.doctors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}
	patientCount, err := s.patients.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	apptCount, err := s.appointments.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	latest, err := s.appointments.ListLatest(ctx, latestCount)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	return &AdminDashboard{
		Doctors:      doctorCount,
		Appointments: apptCount,
		Patients:     patientCount,
		Latest:       latest,
	}, nil
}

func (s *DashboardService) DoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*DoctorDashboard, error) {
	appts, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	dash := &DoctorDashboard{Total: int64(len(appts))}

	seen := make(map[uuid.UUID]struct{})
	for _, a := range appts {
		if a.Cancelled() {
			dash.Cancelled++
		} else {
			dash.Active++
		}
		seen[a.PatientID] = struct{}{}
	}
	dash.Patients = int64(len(seen))

	if len(appts) > latestCount {
		appts = appts[:latestCount]
	}
	dash.Latest = appts

	return dash, nil
}
