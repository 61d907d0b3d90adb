package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"verdict-api/internal/domain"
)

// PendingRegistrationRepository define el contrato de persistencia para
// registros de alta pendientes de verificacion.
type PendingRegistrationRepository interface {
	Upsert(ctx context.Context, pending domain.PendingRegistration) error
	GetByEmail(ctx context.Context, email string) (domain.PendingRegistration, error)
	Delete(ctx context.Context, email string) error
	// Promote inserta el usuario y borra el registro pendiente en una sola
	// transaccion; el consumo del codigo es efectivamente at-most-once.
	Promote(ctx context.Context, user domain.User) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PgPendingRegistrationRepository implementa el repositorio usando pgxpool.
type PgPendingRegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewPgPendingRegistrationRepository(pool *pgxpool.Pool) *PgPendingRegistrationRepository {
	return &PgPendingRegistrationRepository{pool: pool}
}

// Upsert crea o reemplaza el registro pendiente para el email en una sola
// sentencia, sin ventana delete-then-insert.
func (r *PgPendingRegistrationRepository) Upsert(ctx context.Context, pending domain.PendingRegistration) error {
	const query = `
		INSERT INTO otp_verifications
			(email, otp_hash, expires_at, name, password_hash, role, license_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			otp_hash       = EXCLUDED.otp_hash,
			expires_at     = EXCLUDED.expires_at,
			name           = EXCLUDED.name,
			password_hash  = EXCLUDED.password_hash,
			role           = EXCLUDED.role,
			license_number = EXCLUDED.license_number,
			created_at     = EXCLUDED.created_at
	`
	_, err := r.pool.Exec(ctx, query,
		pending.Email,
		pending.OtpHash,
		pending.ExpiresAt,
		pending.Name,
		pending.PasswordHash,
		pending.Role,
		pending.LicenseNumber,
		pending.CreatedAt,
	)
	return err
}

func (r *PgPendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (domain.PendingRegistration, error) {
	const query = `
		SELECT email, otp_hash, expires_at, name, password_hash, role,
		       COALESCE(license_number, ''), created_at
		FROM otp_verifications
		WHERE email = $1
	`
	var p domain.PendingRegistration
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.Email,
		&p.OtpHash,
		&p.ExpiresAt,
		&p.Name,
		&p.PasswordHash,
		&p.Role,
		&p.LicenseNumber,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PendingRegistration{}, err
	}
	return p, err
}

func (r *PgPendingRegistrationRepository) Delete(ctx context.Context, email string) error {
	const query = `DELETE FROM otp_verifications WHERE email = $1`
	_, err := r.pool.Exec(ctx, query, email)
	return err
}

func (r *PgPendingRegistrationRepository) Promote(ctx context.Context, user domain.User) error {
	const insertUser = `
		INSERT INTO users
			(id, name, email, password_hash, role, is_verified, license_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
	`
	const deletePending = `DELETE FROM otp_verifications WHERE email = $1`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertUser,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.LicenseNumber,
		user.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if _, err := tx.Exec(ctx, deletePending, user.Email); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteExpired barre registros cuyo codigo ya vencio.
func (r *PgPendingRegistrationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM otp_verifications WHERE expires_at <= now()`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
