package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/pkg/metrics"
)

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*doctor.Doctor

	// conflicts makes the next N UpdateSlots calls fail with
	// ErrVersionConflict, simulating a concurrent writer.
	conflicts int
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: map[uuid.UUID]*doctor.Doctor{}}
}

func (r *fakeDoctorRepo) put(d *doctor.Doctor) *doctor.Doctor {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.doctors[d.ID] = d
	return d
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.doctors {
		if existing.Email == d.Email {
			return doctor.ErrDoctorExists
		}
	}
	r.put(d)
	return nil
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	copy := *d
	copy.BookedSlots = d.BookedSlots.Clone()
	return &copy, nil
}

func (r *fakeDoctorRepo) GetByEmail(_ context.Context, email string) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.Email == email {
			copy := *d
			return &copy, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *fakeDoctorRepo) List(_ context.Context) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*doctor.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[d.ID]; !ok {
		return doctor.ErrDoctorNotFound
	}
	copy := *d
	r.doctors[d.ID] = &copy
	return nil
}

func (r *fakeDoctorRepo) UpdateSlots(_ context.Context, id uuid.UUID, slots doctor.SlotMap, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		return doctor.ErrVersionConflict
	}
	d, ok := r.doctors[id]
	if !ok {
		return doctor.ErrDoctorNotFound
	}
	if d.Version != expectedVersion {
		return doctor.ErrVersionConflict
	}
	d.BookedSlots = slots.Clone()
	d.Version++
	return nil
}

func (r *fakeDoctorRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.doctors)), nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: map[uuid.UUID]*patient.Patient{}}
}

func (r *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.Email == p.Email {
			return patient.ErrEmailExists
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *fakePatientRepo) GetByEmail(_ context.Context, email string) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *fakePatientRepo) Update(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return patient.ErrPatientNotFound
	}
	copy := *p
	r.patients[p.ID] = &copy
	return nil
}

func (r *fakePatientRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.patients)), nil
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts []*appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copy := *a
	r.appts = append(r.appts, &copy)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.ID == id {
			copy := *a
			return &copy, nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.appts {
		if existing.ID == a.ID {
			copy := *a
			r.appts[i] = &copy
			return nil
		}
	}
	return appointment.ErrAppointmentNotFound
}

func (r *fakeAppointmentRepo) list(filter func(*appointment.Appointment) bool) []*appointment.Appointment {
	var out []*appointment.Appointment
	// Newest first: iterate insertion order in reverse.
	for i := len(r.appts) - 1; i >= 0; i-- {
		if filter(r.appts[i]) {
			copy := *r.appts[i]
			out = append(out, &copy)
		}
	}
	return out
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a *appointment.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *fakeAppointmentRepo) ListAll(_ context.Context) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*appointment.Appointment) bool { return true }), nil
}

func (r *fakeAppointmentRepo) ListLatest(_ context.Context, n int) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list(func(*appointment.Appointment) bool { return true })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ExistsActive(_ context.Context, patientID, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.PatientID == patientID && a.DoctorID == doctorID &&
			a.SlotDate == slotDate && a.SlotTime == slotTime && !a.Cancelled() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.appts)), nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(context.Context, *domain.AuditLog) error { return nil }

func testCollector() *metrics.Collector {
	return metrics.NewCollector("carebook_test", prometheus.NewRegistry())
}

func testAudit() *AuditService {
	return NewAuditService(fakeAuditRepo{}, testCollector(), zap.NewNop())
}
