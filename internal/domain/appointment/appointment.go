package appointment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state. A single enumeration rather
// than independent flags, so "cancelled and completed" cannot exist.
//
//	booked → cancelled
//	booked → completed
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// PatientSnapshot is a copy of the patient's profile taken at booking
// time. It is never synced with the live record afterwards; appointments
// are historical documents.
type PatientSnapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth string    `json:"dob"`
	Gender      string    `json:"gender"`
	Image       string    `json:"image"`
	AddrLine1   string    `json:"addressLine1"`
	AddrLine2   string    `json:"addressLine2"`
}

// DoctorSnapshot is a copy of the doctor's profile taken at booking time.
// The booked-slot map is deliberately not part of the snapshot.
type DoctorSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Speciality string    `json:"speciality"`
	Degree     string    `json:"degree"`
	Experience string    `json:"experience"`
	About      string    `json:"about"`
	Fee        int       `json:"fee"`
	Image      string    `json:"image"`
	AddrLine1  string    `json:"addressLine1"`
	AddrLine2  string    `json:"addressLine2"`
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	// SlotDate is YYYY-MM-DD, SlotTime is a 12-hour AM/PM string. Both
	// must match the doctor's booked-slot map entries byte for byte.
	SlotDate string `gorm:"column:slot_date;type:varchar(10);not null;index"`
	SlotTime string `gorm:"column:slot_time;type:varchar(10);not null"`

	// Amount is the doctor's fee copied at booking time.
	Amount int `gorm:"column:amount;not null"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'booked';index"`
	Paid   bool   `gorm:"column:paid;not null;default:false"`

	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	PatientData PatientSnapshot `gorm:"column:patient_data;serializer:json"`
	DoctorData  DoctorSnapshot  `gorm:"column:doctor_data;serializer:json"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

func (a *Appointment) Cancelled() bool { return a.Status == StatusCancelled }
func (a *Appointment) Completed() bool { return a.Status == StatusCompleted }

// Cancel moves a booked appointment to cancelled. Completed appointments
// stay completed.
func (a *Appointment) Cancel() error {
	switch a.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrAlreadyCompleted
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	return nil
}

// Complete moves a booked appointment to completed. Completing a
// cancelled appointment is rejected rather than silently stacking states.
func (a *Appointment) Complete() error {
	switch a.Status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.CompletedAt = &now
	return nil
}

func (a *Appointment) MarkPaid() error {
	if a.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	a.Paid = true
	return nil
}

// MarshalJSON keeps the wire shape the existing clients expect: the
// legacy "cancelled", "isCompleted" and "payment" booleans are derived
// from the status enum.
func (a Appointment) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID          uuid.UUID       `json:"id"`
		PatientID   uuid.UUID       `json:"userId"`
		DoctorID    uuid.UUID       `json:"docId"`
		SlotDate    string          `json:"slotDate"`
		SlotTime    string          `json:"slotTime"`
		Amount      int             `json:"amount"`
		Status      Status          `json:"status"`
		Cancelled   bool            `json:"cancelled"`
		IsCompleted bool            `json:"isCompleted"`
		Payment     bool            `json:"payment"`
		PatientData PatientSnapshot `json:"userData"`
		DoctorData  DoctorSnapshot  `json:"docData"`
		CreatedAt   time.Time       `json:"createdAt"`
	}
	return json.Marshal(wire{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		SlotDate:    a.SlotDate,
		SlotTime:    a.SlotTime,
		Amount:      a.Amount,
		Status:      a.Status,
		Cancelled:   a.Status == StatusCancelled,
		IsCompleted: a.Status == StatusCompleted,
		Payment:     a.Paid,
		PatientData: a.PatientData,
		DoctorData:  a.DoctorData,
		CreatedAt:   a.CreatedAt,
	})
}
