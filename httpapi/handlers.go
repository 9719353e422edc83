package httpapi

import (
	"time"

	"github.com/kataras/iris/v12"

	"propvest/account"
)

// accountResponse is the sanitized account view returned by the registration
// endpoints. The password hash and any pending code never leave the service.
type accountResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	FullName    string    `json:"fullName"`
	LegalID     string    `json:"legalId"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Origin      string    `json:"origin,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAccountResponse(acct account.Account) accountResponse {
	return accountResponse{
		ID:          acct.ID,
		Kind:        string(acct.Kind),
		FullName:    acct.FullName,
		LegalID:     acct.LegalID,
		Email:       acct.Email,
		PhoneNumber: acct.PhoneNumber,
		Origin:      acct.Origin,
		CompanyName: acct.Company.Name,
		Verified:    acct.Verified,
		CreatedAt:   acct.CreatedAt,
	}
}

func (a *API) registerInvestor(ctx iris.Context) {
	var req account.RegisterInvestorRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "all fields are required")
		return
	}

	acct, err := a.svc.RegisterInvestor(ctx.Request().Context(), req)
	if err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"msg": "account registered successfully", "account": toAccountResponse(acct)})
}

func (a *API) registerDeveloper(ctx iris.Context) {
	var req account.RegisterDeveloperRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "all required fields must be filled")
		return
	}

	acct, err := a.svc.RegisterDeveloper(ctx.Request().Context(), req)
	if err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"msg": "account registered successfully", "account": toAccountResponse(acct)})
}

func (a *API) login(ctx iris.Context) {
	var req account.LoginRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "email and password are required")
		return
	}

	res, err := a.svc.Login(ctx.Request().Context(), req)
	if err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "login successful", "token": res.Token})
}

// verifyRequest carries the short field name "code"; the reset-complete
// endpoint uses "verificationCode". Both names are fixed by existing clients.
type verifyRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func (a *API) verify(ctx iris.Context) {
	var req verifyRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "email and verification code are required")
		return
	}

	if err := a.svc.Verify(ctx.Request().Context(), req.Email, req.Code); err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "email verified successfully"})
}

type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

func (a *API) resendCode(ctx iris.Context) {
	var req emailRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "email is required")
		return
	}

	if err := a.svc.ResendCode(ctx.Request().Context(), req.Email); err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "verification code sent"})
}

func (a *API) requestPasswordReset(ctx iris.Context) {
	var req emailRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "email is required")
		return
	}

	if err := a.svc.RequestPasswordReset(ctx.Request().Context(), req.Email); err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "password reset code sent"})
}

type newPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	Code        string `json:"verificationCode" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (a *API) completePasswordReset(ctx iris.Context) {
	var req newPasswordRequest
	if err := ctx.ReadJSON(&req); err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "all fields are required")
		return
	}

	if err := a.svc.CompletePasswordReset(ctx.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "password updated successfully"})
}

func (a *API) investorProfile(ctx iris.Context) {
	id := ctx.Params().Get("id")

	profile, err := a.svc.Profile(ctx.Request().Context(), id)
	if err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(profile)
}

func (a *API) uploadProfileImage(ctx iris.Context) {
	accountID := ctx.Values().GetString(accountIDKey)

	file, header, err := ctx.FormFile("file")
	if err != nil {
		JSONError(ctx, iris.StatusBadRequest, "validation_error", "no file uploaded")
		return
	}
	defer file.Close()

	key, err := a.assets.Upload(ctx.Request().Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		a.writeError(ctx, err)
		return
	}

	if err := a.svc.AttachProfileImage(ctx.Request().Context(), accountID, key); err != nil {
		a.writeError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"msg": "file uploaded successfully", "key": key})
}

func (a *API) protectedProbe(ctx iris.Context) {
	ctx.JSON(iris.Map{"msg": "authorized", "accountId": ctx.Values().GetString(accountIDKey)})
}
