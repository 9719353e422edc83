package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ValidationError reports malformed or missing input. The transport layer
// maps it to a 400 response with the message intact.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "account: " + e.Msg
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Format rules are part of the public API contract; clients depend on the
// exact patterns.
var (
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	legalIDRe = regexp.MustCompile(`^[a-zA-Z0-9]{5,}$`)
	phoneRe   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// passwordSymbols is the set of special characters the password policy
// accepts.
const passwordSymbols = "@$!%*?&"

func validEmail(email string) bool { return emailRe.MatchString(email) }
func validLegalID(id string) bool  { return legalIDRe.MatchString(id) }
func validPhone(phone string) bool { return phoneRe.MatchString(phone) }

// validPassword enforces the complexity policy: at least 8 characters with an
// uppercase letter, a lowercase letter, a digit and a symbol, and no
// characters outside the allowed set.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			hasUpper = true
		case unicode.IsLower(r) && r <= unicode.MaxASCII:
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasUpper && hasLower && hasDigit && hasSymbol
}

// credentials groups the fields every registration shares. The per-kind
// validators delegate the common rules here so the two variants cannot
// drift apart again.
type credentials struct {
	Email           string
	LegalID         string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

func validateCredentials(c credentials) error {
	if !validEmail(c.Email) {
		return invalidf("invalid email address")
	}
	if !validLegalID(c.LegalID) {
		return invalidf("invalid legal ID format")
	}
	if !validPhone(c.PhoneNumber) {
		return invalidf("invalid phone number")
	}
	if !validPassword(c.Password) {
		return invalidf("password must be at least 8 characters and include uppercase, lowercase, digit and symbol")
	}
	if c.Password != c.ConfirmPassword {
		return invalidf("password does not match")
	}
	return nil
}

func validateInvestor(req RegisterInvestorRequest) error {
	if req.FullName == "" || req.LegalID == "" || req.Origin == "" || req.Email == "" ||
		req.PhoneNumber == "" || req.Password == "" || req.ConfirmPassword == "" {
		return invalidf("all fields are required")
	}
	return validateCredentials(credentials{
		Email:           req.Email,
		LegalID:         req.LegalID,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
}

func validateDeveloper(req RegisterDeveloperRequest) error {
	required := []string{
		req.FullName, req.LegalID, req.Email, req.PhoneNumber,
		req.Password, req.ConfirmPassword,
		req.CompanyName, req.RegistrationNumber, req.CompanyAddress, req.CompanyURL,
		req.ProofOfIncorporation, req.TaxIdentificationNumber,
		req.CompanyDirectorName, req.DirectorID,
		req.BusinessLicenseCertificate, req.UltimateBeneficialOwner,
	}
	for _, field := range required {
		if field == "" {
			return invalidf("all required fields must be filled")
		}
	}
	return validateCredentials(credentials{
		Email:           req.Email,
		LegalID:         req.LegalID,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
}
