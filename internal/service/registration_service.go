package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"verdict-api/internal/domain"
	"verdict-api/internal/email"
	"verdict-api/internal/repository"
)

// RegistrationService coordina el flujo signup -> OTP -> verificacion -> cuenta,
// ademas de login y actualizacion de perfil.
type RegistrationService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	pending     repository.PendingRegistrationRepository
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	bcryptCost  int
	otpTTL      time.Duration
}

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPendingNotFound    = errors.New("no pending registration")
	ErrOTPInvalid         = errors.New("invalid verification code")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrPendingCorrupt     = errors.New("pending registration corrupt")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnverifiedAccount  = errors.New("account not verified")
	ErrRateLimited        = errors.New("rate limited")
	ErrUserNotFound       = errors.New("user not found")
)

const defaultOTPTTL = 10 * time.Minute

func NewRegistrationService(
	logger *zap.Logger,
	users repository.UserRepository,
	pending repository.PendingRegistrationRepository,
	emailSender email.Sender,
	otpLimiter OTPRateLimiter,
	bcryptCost int,
	otpTTL time.Duration,
) *RegistrationService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &RegistrationService{
		logger:      logger,
		users:       users,
		pending:     pending,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		bcryptCost:  bcryptCost,
		otpTTL:      otpTTL,
	}
}

type SignupInput struct {
	Name          string
	Email         string
	Password      string
	Role          domain.Role
	LicenseNumber string
}

// SignupReceipt confirma el alta pendiente; el codigo nunca viaja al cliente.
type SignupReceipt struct {
	Email     string
	EmailSent bool
}

// InitiateRegistration valida el alta, guarda el registro pendiente con un
// codigo nuevo y lo despacha por correo. Un alta previa sin consumir para el
// mismo email queda reemplazada.
func (s *RegistrationService) InitiateRegistration(ctx context.Context, input SignupInput) (SignupReceipt, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	if name == "" || emailAddr == "" || password == "" {
		return SignupReceipt{}, ErrMissingFields
	}

	role := input.Role
	if role == "" {
		role = domain.RoleAttorney
	}
	if !domain.ValidRole(role) {
		return SignupReceipt{}, ErrInvalidRole
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return SignupReceipt{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return SignupReceipt{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return SignupReceipt{}, err
	}

	code, otpHash, expiresAt, err := generateOTP(s.otpTTL)
	if err != nil {
		return SignupReceipt{}, err
	}

	pending := domain.PendingRegistration{
		Email:         emailAddr,
		Name:          name,
		PasswordHash:  string(hashBytes),
		Role:          role,
		LicenseNumber: strings.TrimSpace(input.LicenseNumber),
		OtpHash:       otpHash,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.pending.Upsert(ctx, pending); err != nil {
		return SignupReceipt{}, err
	}

	return SignupReceipt{
		Email:     emailAddr,
		EmailSent: s.dispatchOTP(ctx, emailAddr, code, name, expiresAt),
	}, nil
}

// ResendCode regenera codigo y expiracion sobre el registro pendiente existente.
func (s *RegistrationService) ResendCode(ctx context.Context, emailAddr string) (bool, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return false, ErrMissingFields
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return false, ErrRateLimited
	}

	pending, err := s.pending.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrPendingNotFound
		}
		return false, err
	}

	code, otpHash, expiresAt, err := generateOTP(s.otpTTL)
	if err != nil {
		return false, err
	}
	pending.OtpHash = otpHash
	pending.ExpiresAt = expiresAt
	if err := s.pending.Upsert(ctx, pending); err != nil {
		return false, err
	}

	return s.dispatchOTP(ctx, emailAddr, code, pending.Name, expiresAt), nil
}

// VerifyCode consume el registro pendiente y materializa la cuenta. Un replay
// con el mismo codigo falla porque el registro ya no existe.
func (s *RegistrationService) VerifyCode(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || code == "" {
		return domain.User{}, ErrMissingFields
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	pending, err := s.pending.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Mismo error que un codigo incorrecto: no revela si el email existe.
			return domain.User{}, ErrOTPInvalid
		}
		return domain.User{}, err
	}
	if !verifyOTP(code, pending.OtpHash) {
		return domain.User{}, ErrOTPInvalid
	}
	if !time.Now().UTC().Before(pending.ExpiresAt) {
		if err := s.pending.Delete(ctx, emailAddr); err != nil && s.logger != nil {
			s.logger.Warn("delete expired pending failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return domain.User{}, ErrOTPExpired
	}
	if pending.PasswordHash == "" {
		return domain.User{}, ErrPendingCorrupt
	}

	user := domain.User{
		ID:            uuid.NewString(),
		Name:          pending.Name,
		Email:         pending.Email,
		PasswordHash:  pending.PasswordHash,
		Role:          pending.Role,
		IsVerified:    true,
		LicenseNumber: pending.LicenseNumber,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.pending.Promote(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida credenciales de login. Email desconocido y password
// incorrecta devuelven el mismo error generico.
func (s *RegistrationService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	// Rama muerta mientras las cuentas nazcan verificadas; se conserva como
	// invariante por si la politica de creacion cambia.
	if !user.IsVerified {
		return domain.User{}, ErrUnverifiedAccount
	}
	return user, nil
}

// UpdateProfile aplica un merge parcial sobre el usuario del token.
func (s *RegistrationService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// dispatchOTP intenta el envio y degrada a un flag: una falla de correo no
// tumba la operacion, el codigo sigue vivo del lado del servidor.
func (s *RegistrationService) dispatchOTP(ctx context.Context, toEmail, code, displayName string, expiresAt time.Time) bool {
	if s.emailSender == nil {
		return false
	}
	if err := s.emailSender.SendVerificationOTP(ctx, toEmail, code, displayName, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", toEmail))
		}
		return false
	}
	return true
}

// generateOTP produce un codigo de 6 digitos uniforme en [100000, 999999]
// junto con su digest salteado y la expiracion.
func generateOTP(ttl time.Duration) (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%d", n.Int64()+100000)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(ttl)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
