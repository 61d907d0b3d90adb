package domain

import "time"

// Role distingue los dos tipos de cuenta de la plataforma.
type Role string

const (
	RoleAttorney Role = "attorney"
	RoleClient   Role = "client"
)

// ValidRole reporta si el valor corresponde a un rol conocido.
func ValidRole(r Role) bool {
	return r == RoleAttorney || r == RoleClient
}

// User es la cuenta materializada tras verificar el OTP.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	IsVerified        bool      `json:"isVerified"`
	LicenseNumber     string    `json:"licenseNumber,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	City              string    `json:"city,omitempty"`
	PracticeAreas     []string  `json:"practiceAreas,omitempty"`
	YearsExperience   int       `json:"yearsExperience,omitempty"`
	LawFirm           string    `json:"lawFirm,omitempty"`
	HourlyRate        float64   `json:"hourlyRate,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProfileUpdate es un merge parcial de campos mutables del perfil.
// Rol, email, hash de password y flag de verificacion quedan fuera a proposito.
type ProfileUpdate struct {
	Name              *string  `json:"name"`
	Phone             *string  `json:"phone"`
	City              *string  `json:"city"`
	PracticeAreas     []string `json:"practiceAreas"`
	YearsExperience   *int     `json:"yearsExperience"`
	LawFirm           *string  `json:"lawFirm"`
	HourlyRate        *float64 `json:"hourlyRate"`
	Bio               *string  `json:"bio"`
	ProfilePictureURL *string  `json:"profilePictureUrl"`
	LicenseNumber     *string  `json:"licenseNumber"`
}
