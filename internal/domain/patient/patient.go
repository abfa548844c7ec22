package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderOther       Gender = "Other"
	GenderNotSelected Gender = "Not Selected"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderNotSelected:
		return true
	}
	return false
}

// Address mirrors the doctor address shape: two free-text lines.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name         string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	Phone       string  `gorm:"column:phone;type:varchar(20)" json:"phone"`
	Address     Address `gorm:"column:address;serializer:json" json:"address"`
	DateOfBirth string  `gorm:"column:date_of_birth;type:varchar(10)" json:"dob"`
	Gender      Gender  `gorm:"column:gender;type:varchar(20);default:'Not Selected'" json:"gender"`
	Image       string  `gorm:"column:image;type:text" json:"image"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileCommand applies partial updates; nil fields are unchanged.
type UpdateProfileCommand struct {
	Name        *string
	Phone       *string
	Address     *Address
	DateOfBirth *string
	Gender      *Gender
	Image       *string
}
