package account

import "time"

// Kind discriminates the two variants of the shared account record.
type Kind string

const (
	KindInvestor  Kind = "investor"
	KindDeveloper Kind = "developer"
)

// Account is the domain representation of a registered account.
// It mirrors the accounts table and should not include JSON annotations so it
// can be reused by different presentation layers.
type Account struct {
	ID              string
	Kind            Kind
	Email           string
	FullName        string
	LegalID         string
	PhoneNumber     string
	Origin          string
	PasswordHash    string
	Verified        bool
	PendingCode     *string
	Company         CompanyProfile
	ProfileImageKey *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CompanyProfile holds the developer-only fields. All of them are required at
// developer registration and empty on investor accounts.
type CompanyProfile struct {
	Name                       string
	RegistrationNumber         string
	Address                    string
	URL                        string
	ProofOfIncorporation       string
	TaxIdentificationNumber    string
	DirectorName               string
	DirectorID                 string
	BusinessLicenseCertificate string
	UltimateBeneficialOwner    string
}

// RegisterInvestorRequest contains investor registration data supplied by callers.
// Field names follow the wire format of the public API.
type RegisterInvestorRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	LegalID         string `json:"legalId" validate:"required"`
	Origin          string `json:"origin" validate:"required"`
	Email           string `json:"email" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// RegisterDeveloperRequest contains property-developer registration data.
type RegisterDeveloperRequest struct {
	FullName                   string `json:"fullName" validate:"required"`
	LegalID                    string `json:"legalId" validate:"required"`
	Email                      string `json:"email" validate:"required"`
	PhoneNumber                string `json:"phoneNumber" validate:"required"`
	Password                   string `json:"password" validate:"required"`
	ConfirmPassword            string `json:"confirmPassword" validate:"required"`
	CompanyName                string `json:"companyName" validate:"required"`
	RegistrationNumber         string `json:"registrationNumber" validate:"required"`
	CompanyAddress             string `json:"companyAddress" validate:"required"`
	CompanyURL                 string `json:"URL" validate:"required"`
	ProofOfIncorporation       string `json:"proofOfIncorporation" validate:"required"`
	TaxIdentificationNumber    string `json:"taxIdentificationNumber" validate:"required"`
	CompanyDirectorName        string `json:"companyDirectorName" validate:"required"`
	DirectorID                 string `json:"directorId" validate:"required"`
	BusinessLicenseCertificate string `json:"businessLicenseCertificate" validate:"required"`
	UltimateBeneficialOwner    string `json:"ultimateBeneficialOwner" validate:"required"`
}

// LoginRequest contains account login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult bundles the token and domain account returned after a
// successful login.
type LoginResult struct {
	Token   string
	Account Account
}

// Profile is the reduced account view exposed by the investor-profile
// endpoint.
type Profile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Origin   string `json:"origin"`
}
