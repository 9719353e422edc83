// Package account implements the account lifecycle shared by investors and
// property developers: registration, email-code verification, login,
// password recovery and the minimal profile flow. Both actor kinds run
// through the same state machine; only the required fields and the kind tag
// differ.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotVerified signals a login attempt against an account whose email
	// has not been verified yet.
	ErrNotVerified = errors.New("account: email not verified")
	// ErrInvalidCredentials signals a wrong password.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrInvalidToken signals a bearer token that failed verification.
	ErrInvalidToken = errors.New("account: invalid token")
)

const (
	subjectVerification  = "Email Verification Request"
	subjectPasswordReset = "Forget Password Request"
)

// Notifier delivers one-time codes to account holders. Delivery failures are
// surfaced as errors; the service decides per operation whether they abort
// the operation.
type Notifier interface {
	Send(to, subject, body string) error
}

// Service owns the account lifecycle state machine.
type Service struct {
	repo       Repository
	notifier   Notifier
	jwtSecret  []byte
	codeLength int
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// NewService creates a new account lifecycle service. codeLength <= 0 falls
// back to DefaultCodeLength.
func NewService(repo Repository, notifier Notifier, jwtSecret string, codeLength int, logger *slog.Logger) *Service {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		notifier:   notifier,
		jwtSecret:  []byte(jwtSecret),
		codeLength: codeLength,
		tokenTTL:   24 * time.Hour,
		logger:     logger,
	}
}

// RegisterInvestor creates a new investor account, issues a verification
// code and attempts delivery. A failed delivery does not abort registration;
// the client recovers via the resend operation.
func (s *Service) RegisterInvestor(ctx context.Context, req RegisterInvestorRequest) (Account, error) {
	if err := validateInvestor(req); err != nil {
		return Account{}, err
	}

	return s.register(ctx, req.Email, CreateParams{
		Kind:        KindInvestor,
		Email:       req.Email,
		FullName:    req.FullName,
		LegalID:     req.LegalID,
		PhoneNumber: req.PhoneNumber,
		Origin:      req.Origin,
	}, req.Password)
}

// RegisterDeveloper creates a new property-developer account. Same contract
// as RegisterInvestor with the additional company fields required.
func (s *Service) RegisterDeveloper(ctx context.Context, req RegisterDeveloperRequest) (Account, error) {
	if err := validateDeveloper(req); err != nil {
		return Account{}, err
	}

	return s.register(ctx, req.Email, CreateParams{
		Kind:        KindDeveloper,
		Email:       req.Email,
		FullName:    req.FullName,
		LegalID:     req.LegalID,
		PhoneNumber: req.PhoneNumber,
		Company: CompanyProfile{
			Name:                       req.CompanyName,
			RegistrationNumber:         req.RegistrationNumber,
			Address:                    req.CompanyAddress,
			URL:                        req.CompanyURL,
			ProofOfIncorporation:       req.ProofOfIncorporation,
			TaxIdentificationNumber:    req.TaxIdentificationNumber,
			DirectorName:               req.CompanyDirectorName,
			DirectorID:                 req.DirectorID,
			BusinessLicenseCertificate: req.BusinessLicenseCertificate,
			UltimateBeneficialOwner:    req.UltimateBeneficialOwner,
		},
	}, req.Password)
}

func (s *Service) register(ctx context.Context, email string, params CreateParams, password string) (Account, error) {
	// Pre-check so no verification email goes out for a duplicate; the
	// unique index still catches the race at insert time.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	code, err := GenerateCode(s.codeLength)
	if err != nil {
		return Account{}, err
	}

	if err := s.notifier.Send(email, subjectVerification, "Your verification code is "+code); err != nil {
		// Registration proceeds; the code is stored and the client can
		// request a resend.
		s.logger.Warn("verification email delivery failed", "email", email, "error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("account: hash password: %w", err)
	}

	params.PasswordHash = string(hash)
	params.PendingCode = code

	return s.repo.Create(ctx, params)
}

// Verify consumes the pending verification code and marks the account
// verified. The code is single use: a second call with the same code fails
// with ErrInvalidCode.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return invalidf("email and verification code are required")
	}
	return s.repo.ConsumeCodeAndVerify(ctx, email, code)
}

// ResendCode issues a fresh verification code, invalidating any previous
// pending one. Unlike registration, a delivery failure aborts the operation
// and leaves the stored code untouched.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	return s.issueCode(ctx, email, subjectVerification, "Your verification code is ")
}

// RequestPasswordReset issues a reset code over the same channel as email
// verification. The verified flag is not altered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.issueCode(ctx, email, subjectPasswordReset, "Your password reset code is ")
}

func (s *Service) issueCode(ctx context.Context, email, subject, bodyPrefix string) error {
	if email == "" {
		return invalidf("email is required")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := GenerateCode(s.codeLength)
	if err != nil {
		return err
	}

	if err := s.notifier.Send(email, subject, bodyPrefix+code); err != nil {
		return fmt.Errorf("account: send code: %w", err)
	}

	return s.repo.SetPendingCode(ctx, email, code)
}

// CompletePasswordReset replaces the account credential if the supplied code
// matches the pending one exactly. The old password is not required and the
// account does not need to be verified.
func (s *Service) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return invalidf("all fields are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("account: hash password: %w", err)
	}

	return s.repo.ConsumeCodeAndSetPassword(ctx, email, code, string(hash))
}

// Login authenticates an account and returns a signed bearer token. Login is
// strictly gated on verification: an unverified account fails with
// ErrNotVerified regardless of password correctness.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return LoginResult{}, invalidf("email and password are required")
	}

	acct, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return LoginResult{}, err
	}

	if !acct.Verified {
		return LoginResult{}, ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(acct.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("account: generate token: %w", err)
	}

	return LoginResult{Token: token, Account: acct}, nil
}

// Profile returns the reduced investor-profile view for an account ID.
func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{FullName: acct.FullName, Email: acct.Email, Origin: acct.Origin}, nil
}

// AttachProfileImage records the asset-store key of an uploaded profile
// image on the account.
func (s *Service) AttachProfileImage(ctx context.Context, id, key string) error {
	return s.repo.SetProfileImage(ctx, id, key)
}

// VerifyToken validates a bearer token and returns the account ID it was
// issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return "", ErrInvalidToken
	}

	return accountID, nil
}

// generateToken creates a signed token carrying the account ID. Tokens
// expire after tokenTTL.
func (s *Service) generateToken(accountID string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"exp":        time.Now().Add(s.tokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
