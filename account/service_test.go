package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func validInvestorReq() RegisterInvestorRequest {
	return RegisterInvestorRequest{
		FullName:        "Alice Investor",
		LegalID:         "AB1234",
		Origin:          "NG",
		Email:           "alice@x.com",
		PhoneNumber:     "+2348012345678",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
}

func validDeveloperReq() RegisterDeveloperRequest {
	return RegisterDeveloperRequest{
		FullName:                   "Dana Developer",
		LegalID:                    "CD5678",
		Email:                      "dana@x.com",
		PhoneNumber:                "+14155552671",
		Password:                   "Passw0rd!",
		ConfirmPassword:            "Passw0rd!",
		CompanyName:                "Dana Estates",
		RegistrationNumber:         "RC-99812",
		CompanyAddress:             "12 Marina Road",
		CompanyURL:                 "https://dana-estates.example",
		ProofOfIncorporation:       "doc-poi-1",
		TaxIdentificationNumber:    "TIN-4451",
		CompanyDirectorName:        "Dana Okafor",
		DirectorID:                 "doc-dir-1",
		BusinessLicenseCertificate: "doc-blc-1",
		UltimateBeneficialOwner:    "Dana Okafor",
	}
}

func TestService_RegisterVerifyLogin(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	acct, err := svc.RegisterInvestor(ctx, validInvestorReq())
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}
	if acct.Kind != KindInvestor {
		t.Fatalf("expected kind %s got %s", KindInvestor, acct.Kind)
	}
	if acct.Verified {
		t.Fatal("fresh account must not be verified")
	}
	if acct.PasswordHash == "Passw0rd!" {
		t.Fatal("password stored in plain text")
	}

	code := mails.lastCode("alice@x.com")
	if code == "" {
		t.Fatal("no verification code delivered")
	}
	if mails.lastSubject("alice@x.com") != subjectVerification {
		t.Fatalf("expected subject %q got %q", subjectVerification, mails.lastSubject("alice@x.com"))
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "Passw0rd!"}); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("login before verification: expected ErrNotVerified, got %v", err)
	}

	if err := svc.Verify(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("code must be single use: expected ErrInvalidCode, got %v", err)
	}

	res, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}

	id, err := svc.VerifyToken(res.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if id != acct.ID {
		t.Fatalf("token subject: expected %q got %q", acct.ID, id)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterInvestorRequest)
	}{
		{"missing full name", func(r *RegisterInvestorRequest) { r.FullName = "" }},
		{"missing origin", func(r *RegisterInvestorRequest) { r.Origin = "" }},
		{"bad email", func(r *RegisterInvestorRequest) { r.Email = "not an email" }},
		{"short legal id", func(r *RegisterInvestorRequest) { r.LegalID = "ab1" }},
		{"legal id punctuation", func(r *RegisterInvestorRequest) { r.LegalID = "ab-1234" }},
		{"phone leading zero", func(r *RegisterInvestorRequest) { r.PhoneNumber = "0801234567" }},
		{"short password", func(r *RegisterInvestorRequest) { r.Password, r.ConfirmPassword = "Pw0!", "Pw0!" }},
		{"password without digit", func(r *RegisterInvestorRequest) { r.Password, r.ConfirmPassword = "Password!", "Password!" }},
		{"password without symbol", func(r *RegisterInvestorRequest) { r.Password, r.ConfirmPassword = "Passw0rdX", "Passw0rdX" }},
		{"confirm mismatch", func(r *RegisterInvestorRequest) { r.ConfirmPassword = "Passw0rd?" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepository()
			mails := &fakeNotifier{}
			svc := NewService(repo, mails, "test-secret", 0, nil)

			req := validInvestorReq()
			tc.mutate(&req)

			_, err := svc.RegisterInvestor(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(repo.byEmail) != 0 {
				t.Fatal("no account must be created on validation failure")
			}
			if len(mails.sent) != 0 {
				t.Fatal("no mail must be sent on validation failure")
			}
		})
	}
}

func TestService_RegisterDeveloper(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	acct, err := svc.RegisterDeveloper(ctx, validDeveloperReq())
	if err != nil {
		t.Fatalf("register developer: %v", err)
	}
	if acct.Kind != KindDeveloper {
		t.Fatalf("expected kind %s got %s", KindDeveloper, acct.Kind)
	}
	if acct.Company.Name != "Dana Estates" {
		t.Fatalf("company profile not persisted: %+v", acct.Company)
	}

	incomplete := validDeveloperReq()
	incomplete.Email = "other@x.com"
	incomplete.UltimateBeneficialOwner = ""
	_, err = svc.RegisterDeveloper(ctx, incomplete)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for missing company field, got %v", err)
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	sentBefore := len(mails.sent)

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(mails.sent) != sentBefore {
		t.Fatal("no mail must be sent for a duplicate registration")
	}
}

func TestService_LoginFailures(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.Login(ctx, LoginRequest{Email: "ghost@x.com", Password: "Passw0rd!"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", mails.lastCode("alice@x.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "WrongPass1!"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_RegisterSurvivesMailFailure(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{fail: true}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	acct, err := svc.RegisterInvestor(ctx, validInvestorReq())
	if err != nil {
		t.Fatalf("register must survive mail failure, got %v", err)
	}
	if acct.PendingCode == nil || *acct.PendingCode == "" {
		t.Fatal("a pending code must still be stored")
	}

	// The client recovers via resend once delivery works again.
	mails.fail = false
	if err := svc.ResendCode(ctx, "alice@x.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", mails.lastCode("alice@x.com")); err != nil {
		t.Fatalf("verify after resend: %v", err)
	}
}

func TestService_ResendInvalidatesPreviousCode(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	first := mails.lastCode("alice@x.com")

	if err := svc.ResendCode(ctx, "alice@x.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	second := mails.lastCode("alice@x.com")

	if first == second {
		t.Skip("generated codes collided; rerun")
	}
	if err := svc.Verify(ctx, "alice@x.com", first); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("stale code: expected ErrInvalidCode, got %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", second); err != nil {
		t.Fatalf("fresh code: %v", err)
	}
}

func TestService_ResendMailFailureKeepsStoredCode(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	original := mails.lastCode("alice@x.com")

	mails.fail = true
	if err := svc.ResendCode(ctx, "alice@x.com"); err == nil {
		t.Fatal("resend must fail when delivery fails")
	}

	// The stored code is only replaced after successful delivery.
	if err := svc.Verify(ctx, "alice@x.com", original); err != nil {
		t.Fatalf("original code must survive a failed resend: %v", err)
	}
}

func TestService_PasswordReset(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", mails.lastCode("alice@x.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "alice@x.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if mails.lastSubject("alice@x.com") != subjectPasswordReset {
		t.Fatalf("expected subject %q got %q", subjectPasswordReset, mails.lastSubject("alice@x.com"))
	}
	code := mails.lastCode("alice@x.com")

	if err := svc.CompletePasswordReset(ctx, "alice@x.com", "WRONG", "NewPassw0rd!"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code: expected ErrInvalidCode, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "Passw0rd!"}); err != nil {
		t.Fatalf("old password must survive a failed reset: %v", err)
	}

	if err := svc.CompletePasswordReset(ctx, "alice@x.com", code, "NewPassw0rd!"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "NewPassw0rd!"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "Passw0rd!"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password after reset: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_ResetAppliesNoComplexityPolicy(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", mails.lastCode("alice@x.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "alice@x.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	// Unlike registration, the reset flow only requires a non-empty
	// replacement password.
	if err := svc.CompletePasswordReset(ctx, "alice@x.com", mails.lastCode("alice@x.com"), "weakpass"); err != nil {
		t.Fatalf("reset to a weak password must succeed: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "weakpass"}); err != nil {
		t.Fatalf("login with weak password: %v", err)
	}
}

func TestService_ResetForUnknownEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, &fakeNotifier{}, "test-secret", 0, nil)

	if err := svc.RequestPasswordReset(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_TokenVerification(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	if _, err := svc.RegisterInvestor(ctx, validInvestorReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Verify(ctx, "alice@x.com", mails.lastCode("alice@x.com")); err != nil {
		t.Fatalf("verify: %v", err)
	}
	res, err := svc.Login(ctx, LoginRequest{Email: "alice@x.com", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.VerifyToken(res.Token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: expected ErrInvalidToken, got %v", err)
	}

	other := NewService(repo, mails, "other-secret", 0, nil)
	if _, err := other.VerifyToken(res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key: expected ErrInvalidToken, got %v", err)
	}
}

func TestService_ProfileAndImage(t *testing.T) {
	repo := newFakeRepository()
	mails := &fakeNotifier{}
	svc := NewService(repo, mails, "test-secret", 0, nil)
	ctx := context.Background()

	acct, err := svc.RegisterInvestor(ctx, validInvestorReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.Profile(ctx, acct.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.FullName != "Alice Investor" || profile.Email != "alice@x.com" || profile.Origin != "NG" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if _, err := svc.Profile(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}

	if err := svc.AttachProfileImage(ctx, acct.ID, "profiles/2026/1/1/key.png"); err != nil {
		t.Fatalf("attach image: %v", err)
	}
	stored, err := repo.GetByID(ctx, acct.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if stored.ProfileImageKey == nil || *stored.ProfileImageKey != "profiles/2026/1/1/key.png" {
		t.Fatalf("image key not recorded: %v", stored.ProfileImageKey)
	}
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeNotifier struct {
	fail bool
	sent []sentMail
}

func (n *fakeNotifier) Send(to, subject, body string) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (n *fakeNotifier) lastCode(to string) string {
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].to != to {
			continue
		}
		fields := strings.Fields(n.sent[i].body)
		if len(fields) == 0 {
			return ""
		}
		return fields[len(fields)-1]
	}
	return ""
}

func (n *fakeNotifier) lastSubject(to string) string {
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].to == to {
			return n.sent[i].subject
		}
	}
	return ""
}

type fakeRepository struct {
	byEmail map[string]*Account
	byID    map[string]*Account
	nextID  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byEmail: make(map[string]*Account),
		byID:    make(map[string]*Account),
	}
}

func (r *fakeRepository) Create(_ context.Context, params CreateParams) (Account, error) {
	if _, ok := r.byEmail[params.Email]; ok {
		return Account{}, ErrDuplicateEmail
	}

	r.nextID++
	code := params.PendingCode
	acct := &Account{
		ID:           fmt.Sprintf("acct-%d", r.nextID),
		Kind:         params.Kind,
		Email:        params.Email,
		FullName:     params.FullName,
		LegalID:      params.LegalID,
		PhoneNumber:  params.PhoneNumber,
		Origin:       params.Origin,
		PasswordHash: params.PasswordHash,
		PendingCode:  &code,
		Company:      params.Company,
	}
	r.byEmail[acct.Email] = acct
	r.byID[acct.ID] = acct
	return *acct, nil
}

func (r *fakeRepository) GetByEmail(_ context.Context, email string) (Account, error) {
	acct, ok := r.byEmail[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return *acct, nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (Account, error) {
	acct, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return *acct, nil
}

func (r *fakeRepository) SetPendingCode(_ context.Context, email, code string) error {
	acct, ok := r.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	acct.PendingCode = &code
	return nil
}

func (r *fakeRepository) ConsumeCodeAndVerify(_ context.Context, email, code string) error {
	acct, ok := r.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	if acct.PendingCode == nil || *acct.PendingCode != code {
		return ErrInvalidCode
	}
	acct.PendingCode = nil
	acct.Verified = true
	return nil
}

func (r *fakeRepository) ConsumeCodeAndSetPassword(_ context.Context, email, code, passwordHash string) error {
	acct, ok := r.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	if acct.PendingCode == nil || *acct.PendingCode != code {
		return ErrInvalidCode
	}
	acct.PendingCode = nil
	acct.PasswordHash = passwordHash
	return nil
}

func (r *fakeRepository) SetProfileImage(_ context.Context, id, key string) error {
	acct, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	acct.ProfileImageKey = &key
	return nil
}
