package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"verdict-api/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando un insert viola la unicidad de email.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error)
	ListVerifiedByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

const userColumns = `
	id, name, email, password_hash, role, is_verified,
	COALESCE(license_number, ''), COALESCE(phone, ''), COALESCE(city, ''),
	COALESCE(practice_areas, '{}'), COALESCE(years_experience, 0),
	COALESCE(law_firm, ''), COALESCE(hourly_rate, 0), COALESCE(bio, ''),
	COALESCE(profile_picture_url, ''), created_at`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// UpdateProfile aplica un merge de los campos presentes y devuelve la fila final.
func (r *PgUserRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (domain.User, error) {
	const query = `
		UPDATE users SET
			name                = COALESCE($2, name),
			phone               = COALESCE($3, phone),
			city                = COALESCE($4, city),
			practice_areas      = COALESCE($5, practice_areas),
			years_experience    = COALESCE($6, years_experience),
			law_firm            = COALESCE($7, law_firm),
			hourly_rate         = COALESCE($8, hourly_rate),
			bio                 = COALESCE($9, bio),
			profile_picture_url = COALESCE($10, profile_picture_url),
			license_number      = COALESCE($11, license_number)
		WHERE id = $1
		RETURNING ` + userColumns

	var areas *[]string
	if update.PracticeAreas != nil {
		areas = &update.PracticeAreas
	}
	row := r.pool.QueryRow(ctx, query,
		id,
		update.Name,
		update.Phone,
		update.City,
		areas,
		update.YearsExperience,
		update.LawFirm,
		update.HourlyRate,
		update.Bio,
		update.ProfilePictureURL,
		update.LicenseNumber,
	)
	return scanUser(row)
}

func (r *PgUserRepository) ListVerifiedByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND is_verified
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.LicenseNumber,
		&u.Phone,
		&u.City,
		&u.PracticeAreas,
		&u.YearsExperience,
		&u.LawFirm,
		&u.HourlyRate,
		&u.Bio,
		&u.ProfilePictureURL,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

// isUniqueViolation reporta violaciones de indice unico (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
