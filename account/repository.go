package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that no account exists for the given email or id.
	ErrNotFound = errors.New("account: not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("account: email already exists")
	// ErrInvalidCode signals that the supplied verification code does not
	// match the pending one, including when no code is pending.
	ErrInvalidCode = errors.New("account: invalid verification code")
)

// Repository handles data access for the account lifecycle.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)

	// SetPendingCode replaces the pending verification code, invalidating
	// any previous one. The verified flag is untouched.
	SetPendingCode(ctx context.Context, email, code string) error

	// ConsumeCodeAndVerify atomically clears the pending code and marks the
	// account verified, but only if the stored code equals the supplied one.
	ConsumeCodeAndVerify(ctx context.Context, email, code string) error

	// ConsumeCodeAndSetPassword atomically clears the pending code and
	// replaces the password hash, but only if the stored code equals the
	// supplied one.
	ConsumeCodeAndSetPassword(ctx context.Context, email, code, passwordHash string) error

	SetProfileImage(ctx context.Context, id, key string) error
}

// CreateParams contains write parameters for creating accounts.
type CreateParams struct {
	Kind         Kind
	Email        string
	FullName     string
	LegalID      string
	PhoneNumber  string
	Origin       string
	PasswordHash string
	PendingCode  string
	Company      CompanyProfile
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed account repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, kind, email, full_name, legal_id, phone_number, origin,
		password_hash, verified, verification_code,
		company_name, registration_number, company_address, company_url,
		proof_of_incorporation, tax_identification_number,
		company_director_name, director_id, business_license_certificate,
		ultimate_beneficial_owner, profile_image_key, created_at, updated_at`

// Create inserts a new account with a hashed password and a pending code.
func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Account, error) {
	insertSQL := `
		INSERT INTO accounts (kind, email, full_name, legal_id, phone_number, origin,
			password_hash, verification_code,
			company_name, registration_number, company_address, company_url,
			proof_of_incorporation, tax_identification_number,
			company_director_name, director_id, business_license_certificate,
			ultimate_beneficial_owner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.pool.QueryRow(ctx, insertSQL,
		params.Kind, params.Email, params.FullName, params.LegalID, params.PhoneNumber, params.Origin,
		params.PasswordHash, params.PendingCode,
		params.Company.Name, params.Company.RegistrationNumber, params.Company.Address, params.Company.URL,
		params.Company.ProofOfIncorporation, params.Company.TaxIdentificationNumber,
		params.Company.DirectorName, params.Company.DirectorID, params.Company.BusinessLicenseCertificate,
		params.Company.UltimateBeneficialOwner,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateEmail
		}
		return Account{}, fmt.Errorf("account: create: %w", err)
	}

	return acct, nil
}

// GetByEmail retrieves an account by email address. No normalization is
// applied; emails are compared exactly as stored.
func (r *PGRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	selectSQL := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	acct, err := scanAccount(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("account: get by email: %w", err)
	}

	return acct, nil
}

// GetByID retrieves an account by ID.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Account, error) {
	selectSQL := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acct, err := scanAccount(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("account: get by id: %w", err)
	}

	return acct, nil
}

// SetPendingCode overwrites the pending verification code.
func (r *PGRepository) SetPendingCode(ctx context.Context, email, code string) error {
	const updateSQL = `
		UPDATE accounts
		SET verification_code = $2, updated_at = now()
		WHERE email = $1
	`

	tag, err := r.pool.Exec(ctx, updateSQL, email, code)
	if err != nil {
		return fmt.Errorf("account: set pending code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeCodeAndVerify performs the conditional update that closes the
// resend/verify race: the code is checked and cleared in one statement, so a
// concurrently issued replacement code can never be consumed by a stale
// verification attempt.
func (r *PGRepository) ConsumeCodeAndVerify(ctx context.Context, email, code string) error {
	const updateSQL = `
		UPDATE accounts
		SET verified = TRUE, verification_code = NULL, updated_at = now()
		WHERE email = $1 AND verification_code = $2
	`

	tag, err := r.pool.Exec(ctx, updateSQL, email, code)
	if err != nil {
		return fmt.Errorf("account: consume code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.codeMismatch(ctx, email)
	}
	return nil
}

// ConsumeCodeAndSetPassword replaces the credential under the same
// conditional-update guarantee as ConsumeCodeAndVerify. The verified flag is
// untouched; password recovery does not require a verified account.
func (r *PGRepository) ConsumeCodeAndSetPassword(ctx context.Context, email, code, passwordHash string) error {
	const updateSQL = `
		UPDATE accounts
		SET password_hash = $3, verification_code = NULL, updated_at = now()
		WHERE email = $1 AND verification_code = $2
	`

	tag, err := r.pool.Exec(ctx, updateSQL, email, code, passwordHash)
	if err != nil {
		return fmt.Errorf("account: consume code for reset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.codeMismatch(ctx, email)
	}
	return nil
}

// SetProfileImage records the asset-store key of the uploaded profile image.
func (r *PGRepository) SetProfileImage(ctx context.Context, id, key string) error {
	const updateSQL = `
		UPDATE accounts
		SET profile_image_key = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateSQL, id, key)
	if err != nil {
		return fmt.Errorf("account: set profile image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// codeMismatch distinguishes a missing account from a wrong (or absent)
// pending code after a conditional update matched no rows.
func (r *PGRepository) codeMismatch(ctx context.Context, email string) error {
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return err
	}
	return ErrInvalidCode
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acct        Account
		origin      *string
		pendingCode *string
		imageKey    *string
		company     [10]*string
	)
	err := row.Scan(
		&acct.ID,
		&acct.Kind,
		&acct.Email,
		&acct.FullName,
		&acct.LegalID,
		&acct.PhoneNumber,
		&origin,
		&acct.PasswordHash,
		&acct.Verified,
		&pendingCode,
		&company[0], &company[1], &company[2], &company[3], &company[4],
		&company[5], &company[6], &company[7], &company[8], &company[9],
		&imageKey,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return Account{}, err
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	acct.Origin = deref(origin)
	acct.PendingCode = pendingCode
	acct.ProfileImageKey = imageKey
	acct.Company = CompanyProfile{
		Name:                       deref(company[0]),
		RegistrationNumber:         deref(company[1]),
		Address:                    deref(company[2]),
		URL:                        deref(company[3]),
		ProofOfIncorporation:       deref(company[4]),
		TaxIdentificationNumber:    deref(company[5]),
		DirectorName:               deref(company[6]),
		DirectorID:                 deref(company[7]),
		BusinessLicenseCertificate: deref(company[8]),
		UltimateBeneficialOwner:    deref(company[9]),
	}

	return acct, nil
}
