package doctor

import (
	"time"

	"github.com/google/uuid"
)

// SlotMap records a doctor's reserved slots, keyed by calendar date in
// YYYY-MM-DD form. Each date maps to the time-of-day strings already
// booked on that date, in reservation order. Time strings use the
// 12-hour clock with AM/PM ("10:00 AM") and must match the values the
// slot engine emits exactly; slot matching is string equality.
type SlotMap map[string][]string

func (m SlotMap) Has(date, timeOfDay string) bool {
	for _, t := range m[date] {
		if t == timeOfDay {
			return true
		}
	}
	return false
}

// Add records a reservation. Returns false if the slot was already taken.
func (m SlotMap) Add(date, timeOfDay string) bool {
	if m.Has(date, timeOfDay) {
		return false
	}
	m[date] = append(m[date], timeOfDay)
	return true
}

// Remove releases a reservation. Removing an absent slot is a no-op.
// A date whose last slot is removed is dropped from the map entirely,
// keeping the stored document sparse.
func (m SlotMap) Remove(date, timeOfDay string) {
	times := m[date]
	for i, t := range times {
		if t == timeOfDay {
			m[date] = append(times[:i:i], times[i+1:]...)
			break
		}
	}
	if len(m[date]) == 0 {
		delete(m, date)
	}
}

func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for date, times := range m {
		out[date] = append([]string(nil), times...)
	}
	return out
}

// Address is the doctor's practice address as two free-text lines.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name         string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	Speciality string `gorm:"column:speciality;type:varchar(100);not null;index" json:"speciality"`
	Degree     string `gorm:"column:degree;type:varchar(100);not null" json:"degree"`
	Experience string `gorm:"column:experience;type:varchar(50);not null" json:"experience"`
	About      string `gorm:"column:about;type:text" json:"about"`
	Fee        int    `gorm:"column:fee;not null" json:"fee"`
	Image      string `gorm:"column:image;type:text" json:"image"`

	Available bool    `gorm:"column:available;default:true;index" json:"available"`
	Address   Address `gorm:"column:address;serializer:json" json:"address"`

	// BookedSlots is the single source of truth for slot occupancy.
	// It is mutated only through Reserve/Release, persisted with a
	// compare-and-swap on Version so concurrent bookings cannot both win.
	BookedSlots SlotMap `gorm:"column:booked_slots;serializer:json" json:"slotsBooked"`
	Version     int     `gorm:"column:version;not null;default:0" json:"-"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

// Reserve marks a slot as taken. ErrSlotAlreadyBooked if it already is.
func (d *Doctor) Reserve(date, timeOfDay string) error {
	if !d.Available {
		return ErrDoctorUnavailable
	}
	if d.BookedSlots == nil {
		d.BookedSlots = SlotMap{}
	}
	if !d.BookedSlots.Add(date, timeOfDay) {
		return ErrSlotAlreadyBooked
	}
	return nil
}

// Release frees a slot. Idempotent: releasing an unreserved slot succeeds.
func (d *Doctor) Release(date, timeOfDay string) {
	if d.BookedSlots == nil {
		return
	}
	d.BookedSlots.Remove(date, timeOfDay)
}

type CreateDoctorCommand struct {
	Name       string
	Email      string
	Password   string
	Speciality string
	Degree     string
	Experience string
	About      string
	Fee        int
	Image      string
	Address    Address
}

// UpdateProfileCommand applies partial updates; nil fields are unchanged.
type UpdateProfileCommand struct {
	Name       *string
	Speciality *string
	Degree     *string
	Experience *string
	About      *string
	Fee        *int
	Image      *string
	Address    *Address
	Available  *bool
}
