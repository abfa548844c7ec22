package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
)

func TestAdminDashboard(t *testing.T) {
	doctors := newFakeDoctorRepo()
	patients := newFakePatientRepo()
	appts := newFakeAppointmentRepo()
	svc := NewDashboardService(doctors, patients, appts)
	ctx := context.Background()

	d := &doctor.Doctor{Name: "Dr. Rao", Email: "rao@carebook.test", Available: true}
	if err := doctors.Create(ctx, d); err != nil {
		t.Fatalf("seeding doctor: %v", err)
	}
	p := &patient.Patient{Name: "Asha", Email: "asha@example.com"}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatalf("seeding patient: %v", err)
	}

	for i := 0; i < 7; i++ {
		a := &appointment.Appointment{
			PatientID: p.ID,
			DoctorID:  d.ID,
			SlotDate:  fmt.Sprintf("2025-07-%02d", 10+i),
			SlotTime:  "10:00 AM",
			Status:    appointment.StatusBooked,
		}
		if err := appts.Create(ctx, a); err != nil {
			t.Fatalf("seeding appointment %d: %v", i, err)
		}
	}

	dash, err := svc.AdminDashboard(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Doctors != 1 || dash.Patients != 1 || dash.Appointments != 7 {
		t.Errorf("counts = %d/%d/%d, want 1/1/7", dash.Doctors, dash.Patients, dash.Appointments)
	}
	if len(dash.Latest) != latestCount {
		t.Fatalf("latest length = %d, want %d", len(dash.Latest), latestCount)
	}
	// Newest first: last booking seeded was for 2025-07-16.
	if dash.Latest[0].SlotDate != "2025-07-16" {
		t.Errorf("latest[0].SlotDate = %q, want 2025-07-16", dash.Latest[0].SlotDate)
	}
}

// boundedApptRepo records the limit the dashboard asks for, so the test
// can prove the latest list is bounded at the query instead of trimmed
// in memory.
type boundedApptRepo struct {
	*fakeAppointmentRepo
	latestN int
}

func (r *boundedApptRepo) ListLatest(ctx context.Context, n int) ([]*appointment.Appointment, error) {
	r.latestN = n
	return r.fakeAppointmentRepo.ListLatest(ctx, n)
}

func TestAdminDashboard_BoundsLatestQuery(t *testing.T) {
	appts := &boundedApptRepo{fakeAppointmentRepo: newFakeAppointmentRepo()}
	svc := NewDashboardService(newFakeDoctorRepo(), newFakePatientRepo(), appts)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		a := &appointment.Appointment{
			PatientID: uuid.New(),
			DoctorID:  uuid.New(),
			SlotDate:  fmt.Sprintf("2025-08-%02d", 10+i),
			SlotTime:  "09:00 AM",
			Status:    appointment.StatusBooked,
		}
		if err := appts.Create(ctx, a); err != nil {
			t.Fatalf("seeding appointment %d: %v", i, err)
		}
	}

	dash, err := svc.AdminDashboard(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appts.latestN != latestCount {
		t.Errorf("dashboard asked the repository for %d rows, want %d", appts.latestN, latestCount)
	}
	if len(dash.Latest) != latestCount {
		t.Errorf("latest length = %d, want %d", len(dash.Latest), latestCount)
	}
}

func TestDoctorDashboard(t *testing.T) {
	doctors := newFakeDoctorRepo()
	patients := newFakePatientRepo()
	appts := newFakeAppointmentRepo()
	svc := NewDashboardService(doctors, patients, appts)
	ctx := context.Background()

	docID := uuid.New()
	otherDoc := uuid.New()
	patientA := uuid.New()
	patientB := uuid.New()

	seed := []struct {
		patient uuid.UUID
		doctor  uuid.UUID
		status  appointment.Status
	}{
		{patientA, docID, appointment.StatusBooked},
		{patientA, docID, appointment.StatusCancelled},
		{patientB, docID, appointment.StatusCompleted},
		{patientB, otherDoc, appointment.StatusBooked},
	}
	for i, s := range seed {
		a := &appointment.Appointment{
			PatientID: s.patient,
			DoctorID:  s.doctor,
			SlotDate:  fmt.Sprintf("2025-07-%02d", 10+i),
			SlotTime:  "11:00 AM",
			Status:    s.status,
		}
		if err := appts.Create(ctx, a); err != nil {
			t.Fatalf("seeding appointment %d: %v", i, err)
		}
	}

	dash, err := svc.DoctorDashboard(ctx, docID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Total != 3 {
		t.Errorf("total = %d, want 3", dash.Total)
	}
	if dash.Active != 2 {
		t.Errorf("active = %d, want 2", dash.Active)
	}
	if dash.Cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", dash.Cancelled)
	}
	if dash.Patients != 2 {
		t.Errorf("distinct patients = %d, want 2", dash.Patients)
	}
	for _, a := range dash.Latest {
		if a.DoctorID != docID {
			t.Errorf("latest list leaked another doctor's appointment %s", a.ID)
		}
	}
}
