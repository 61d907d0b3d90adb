package domain

import "time"

// PendingRegistration es un alta sin verificar, a la espera del codigo OTP.
// Hay a lo sumo un registro activo por email; un alta nueva lo reemplaza.
type PendingRegistration struct {
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	LicenseNumber string
	OtpHash       string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
