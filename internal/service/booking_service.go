package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/domain"
	"github.com/carebook/carebook/internal/domain/appointment"
	"github.com/carebook/carebook/internal/domain/doctor"
	"github.com/carebook/carebook/internal/domain/patient"
	"github.com/carebook/carebook/internal/schedule"
	"github.com/carebook/carebook/pkg/metrics"
)

// Booking outcome labels for the bookings-by-outcome counter.
const (
	outcomeBooked      = "booked"
	outcomeNotFound    = "doctor_not_found"
	outcomeUnavailable = "doctor_unavailable"
	outcomeSlotTaken   = "slot_taken"
	outcomeDuplicate   = "duplicate"
	outcomeError       = "error"
)

// maxReserveAttempts bounds the compare-and-swap retry loop on the
// doctor's booked-slot map. Each retry re-reads the record, so a retry
// that finds the slot taken fails with ErrSlotAlreadyBooked instead.
const maxReserveAttempts = 3

// Actor identifies who is performing a lifecycle operation. Admin actors
// carry no record id.
type Actor struct {
	Role domain.Role
	ID   uuid.UUID
}

func (a Actor) mayTouch(appt *appointment.Appointment) bool {
	switch a.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDoctor:
		return a.ID == appt.DoctorID
	case domain.RolePatient:
		return a.ID == appt.PatientID
	}
	return false
}

type BookingService struct {
	doctors      doctor.Repository
	patients     patient.Repository
	appointments appointment.Repository
	auditSvc     *AuditService
	collector    *metrics.Collector
	log          *zap.Logger

	// now is swapped out by tests that pin the slot window.
	now func() time.Time
}

func NewBookingService(
	doctors doctor.Repository,
	patients patient.Repository,
	appointments appointment.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		auditSvc:     auditSvc,
		collector:    collector,
		log:          log,
		now:          time.Now,
	}
}

// AvailableSlots projects the doctor's open slots for the next 7 days.
func (s *BookingService) AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([][]schedule.Slot, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return schedule.AvailableSlots(d.BookedSlots, s.now()), nil
}

// BookAppointment reserves a slot for a patient and records the
// appointment with profile snapshots and the fee frozen as the amount.
//
// Preconditions are checked in a fixed order, each its own failure:
// doctor exists, doctor available, slot free, no duplicate booking by
// the same patient. The slot write is a compare-and-swap on the doctor
// record's version; on conflict the whole sequence is retried.
func (s *BookingService) BookAppointment(ctx context.Context, patientID, doctorID uuid.UUID, slotDate, slotTime, ip string) (*appointment.Appointment, error) {
	if slotDate == "" || slotTime == "" {
		return nil, &ValidationError{Fields: []string{"slotDate and slotTime are required"}}
	}

	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var d *doctor.Doctor
	for attempt := 0; ; attempt++ {
		d, err = s.doctors.GetByID(ctx, doctorID)
		if err != nil {
			if errors.Is(err, doctor.ErrDoctorNotFound) {
				s.collector.BookingsTotal.WithLabelValues(outcomeNotFound).Inc()
			}
			return nil, err
		}

		// Reserve mutates only this request's copy of the record; the
		// write below makes it durable.
		if err := d.Reserve(slotDate, slotTime); err != nil {
			switch {
			case errors.Is(err, doctor.ErrDoctorUnavailable):
				s.collector.BookingsTotal.WithLabelValues(outcomeUnavailable).Inc()
			case errors.Is(err, doctor.ErrSlotAlreadyBooked):
				s.collector.BookingsTotal.WithLabelValues(outcomeSlotTaken).Inc()
			}
			return nil, err
		}

		dup, err := s.appointments.ExistsActive(ctx, patientID, doctorID, slotDate, slotTime)
		if err != nil {
			return nil, fmt.Errorf("checking duplicate booking: %w", err)
		}
		if dup {
			s.collector.BookingsTotal.WithLabelValues(outcomeDuplicate).Inc()
			return nil, appointment.ErrDuplicateBooking
		}

		err = s.doctors.UpdateSlots(ctx, d.ID, d.BookedSlots, d.Version)
		if err == nil {
			break
		}
		if !errors.Is(err, doctor.ErrVersionConflict) {
			return nil, fmt.Errorf("reserving slot: %w", err)
		}
		s.collector.SlotConflictsTotal.Inc()
		if attempt+1 >= maxReserveAttempts {
			s.log.Warn("slot reservation lost the race repeatedly",
				zap.String("doctor_id", doctorID.String()),
				zap.String("slot_date", slotDate),
				zap.String("slot_time", slotTime),
			)
			s.collector.BookingsTotal.WithLabelValues(outcomeSlotTaken).Inc()
			return nil, doctor.ErrSlotAlreadyBooked
		}
	}

	appt := &appointment.Appointment{
		PatientID:   p.ID,
		DoctorID:    d.ID,
		SlotDate:    slotDate,
		SlotTime:    slotTime,
		Amount:      d.Fee,
		Status:      appointment.StatusBooked,
		PatientData: snapshotPatient(p),
		DoctorData:  snapshotDoctor(d),
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		// The slot is held but the appointment never materialised;
		// free the slot again so it is not stranded.
		s.releaseSlot(ctx, d.ID, slotDate, slotTime)
		s.log.Error("failed to create appointment", zap.Error(err))
		s.collector.BookingsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.collector.BookingsTotal.WithLabelValues(outcomeBooked).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: patientID.String(), ActorRole: string(domain.RolePatient),
		Action: "create", ResourceType: "appointment", ResourceID: appt.ID.String(), IPAddress: ip,
	})
	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("doctor_id", d.ID.String()),
		zap.String("slot", slotDate+" "+slotTime),
	)

	return appt, nil
}

// CancelAppointment cancels on behalf of the owning patient, the
// assigned doctor, or an admin, and frees the reserved slot.
func (s *BookingService) CancelAppointment(ctx context.Context, id uuid.UUID, actor Actor, ip string) (*appointment.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayTouch(appt) {
		return nil, ErrForbidden
	}

	if err := appt.Cancel(); err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.releaseSlot(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime)

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: actor.ID.String(), ActorRole: string(actor.Role),
		Action: "update", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
		Changes: `{"status":"cancelled"}`,
	})

	return appt, nil
}

// CompleteAppointment marks an appointment completed. Allowed for the
// owning patient, the assigned doctor, or an admin; a cancelled
// appointment cannot be completed.
func (s *BookingService) CompleteAppointment(ctx context.Context, id uuid.UUID, actor Actor, ip string) (*appointment.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayTouch(appt) {
		return nil, ErrForbidden
	}

	if err := appt.Complete(); err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorID: actor.ID.String(), ActorRole: string(actor.Role),
		Action: "update", ResourceType: "appointment", ResourceID: id.String(), IPAddress: ip,
		Changes: `{"status":"completed"}`,
	})

	return appt, nil
}

// MarkPaid flags an appointment as paid. Payment processing itself is an
// external concern; only the flag lives here.
func (s *BookingService) MarkPaid(ctx context.Context, id uuid.UUID, actor Actor, ip string) (*appointment.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.mayTouch(appt) {
		return nil, ErrForbidden
	}

	if err := appt.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	return appt, nil
}

func (s *BookingService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *BookingService) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}

func (s *BookingService) ListAll(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.appointments.ListAll(ctx)
}

// releaseSlot removes a slot from the doctor's booked map with the same
// compare-and-swap loop as reservation. Releasing an absent slot is a
// no-op, so the operation is idempotent and safe to run best-effort.
func (s *BookingService) releaseSlot(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string) {
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		d, err := s.doctors.GetByID(ctx, doctorID)
		if err != nil {
			s.log.Warn("cannot release slot: doctor lookup failed",
				zap.String("doctor_id", doctorID.String()), zap.Error(err))
			return
		}
		if !d.BookedSlots.Has(slotDate, slotTime) {
			return
		}

		d.Release(slotDate, slotTime)

		err = s.doctors.UpdateSlots(ctx, d.ID, d.BookedSlots, d.Version)
		if err == nil {
			return
		}
		if !errors.Is(err, doctor.ErrVersionConflict) {
			s.log.Error("failed to release slot",
				zap.String("doctor_id", doctorID.String()), zap.Error(err))
			return
		}
	}
	s.log.Error("slot release kept losing the version race",
		zap.String("doctor_id", doctorID.String()),
		zap.String("slot", slotDate+" "+slotTime),
	)
}

func snapshotPatient(p *patient.Patient) appointment.PatientSnapshot {
	return appointment.PatientSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
		Gender:      string(p.Gender),
		Image:       p.Image,
		AddrLine1:   p.Address.Line1,
		AddrLine2:   p.Address.Line2,
	}
}

func snapshotDoctor(d *doctor.Doctor) appointment.DoctorSnapshot {
	return appointment.DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		About:      d.About,
		Fee:        d.Fee,
		Image:      d.Image,
		AddrLine1:  d.Address.Line1,
		AddrLine2:  d.Address.Line2,
	}
}
