package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"arttimeline/internal/httpx"
	"arttimeline/internal/user"
)

type HTTPHandler struct {
	service *Service
	log     zerolog.Logger
}

func NewHTTPHandler(service *Service, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type registerReq struct {
	Name                 string `json:"name" validate:"required,min=1,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,password_strength"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type flowReq struct {
	FlowToken string `json:"flow_token" validate:"required"`
}

type otpReq struct {
	FlowToken string `json:"flow_token" validate:"required"`
	OTP       string `json:"otp" validate:"required,otp"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetReq struct {
	FlowToken            string `json:"flow_token" validate:"required"`
	Password             string `json:"password" validate:"required,password_strength"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type twoFactorReq struct {
	Enabled  *bool  `json:"enabled" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register
// @Summary Start registration
// @Description Email a verification code; the account is created on verify
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /api/auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	flow, err := h.service.Register(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, flow, nil)
}

// ResendRegistration handles POST /api/auth/register/resend
func (h *HTTPHandler) ResendRegistration(w http.ResponseWriter, r *http.Request) {
	h.resend(w, r, h.service.ResendRegistration)
}

// VerifyRegistration handles POST /api/auth/register/verify
// @Summary Verify registration code
// @Tags auth
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /api/auth/register/verify [post]
func (h *HTTPHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	u, tok, err := h.service.VerifyRegistration(r.Context(), req.FlowToken, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, map[string]any{"user": u, "token": tok})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Returns an access token, or a two-factor flow token when
// @Description email codes are enabled for the account
// @Tags auth
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.service.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if res.Flow != nil {
		httpx.JSONSuccess(w, r, map[string]any{
			"two_factor_required": true,
			"flow_token":          res.Flow.FlowToken,
			"stage":               res.Flow.Stage,
			"expires_in":          res.Flow.ExpiresIn,
		}, nil)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{
		"two_factor_required": false,
		"user":                res.User,
		"token":               res.Token,
	}, nil)
}

// VerifyTwoFactor handles POST /api/auth/2fa/verify
func (h *HTTPHandler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	u, tok, err := h.service.VerifyTwoFactor(r.Context(), req.FlowToken, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"user": u, "token": tok}, nil)
}

// ResendTwoFactor handles POST /api/auth/2fa/resend
func (h *HTTPHandler) ResendTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.resend(w, r, h.service.ResendTwoFactor)
}

// ForgotPassword handles POST /api/auth/password/forgot
func (h *HTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	flow, err := h.service.ForgotPassword(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, flow, nil)
}

// VerifyPasswordReset handles POST /api/auth/password/verify
func (h *HTTPHandler) VerifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req otpReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	flow, err := h.service.VerifyPasswordReset(r.Context(), req.FlowToken, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, flow, nil)
}

// ResendPasswordReset handles POST /api/auth/password/resend
func (h *HTTPHandler) ResendPasswordReset(w http.ResponseWriter, r *http.Request) {
	h.resend(w, r, h.service.ResendPasswordReset)
}

// ResetPassword handles POST /api/auth/password/reset
func (h *HTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.FlowToken, req.Password); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"password_reset": true}, nil)
}

// Logout handles POST /api/auth/logout
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, _ := httpx.TokenFrom(r)
	if err := h.service.Logout(r.Context(), httpx.UserIDFrom(r), tok.ID, tok.ExpiresAt); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"logged_out": true}, nil)
}

// Me handles GET /api/me
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// SetTwoFactor handles PUT /api/me/two-factor
func (h *HTTPHandler) SetTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req twoFactorReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.service.SetTwoFactor(r.Context(), httpx.UserIDFrom(r), *req.Enabled, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

func (h *HTTPHandler) resend(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, token string) (Flow, error)) {
	var req flowReq
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}
	flow, err := fn(r.Context(), req.FlowToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, flow, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		httpx.JSONError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	case errors.Is(err, ErrInvalidOTP):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_OTP", "Invalid or expired code", nil)
	case errors.Is(err, ErrInvalidFlow):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_FLOW", "Session expired, please start again", nil)
	case errors.Is(err, ErrEmailTaken):
		httpx.JSONError(w, r, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered", nil)
	case errors.Is(err, ErrUserNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No account found for that email", nil)
	case errors.Is(err, user.ErrNotFound):
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	default:
		h.log.Error().Stack().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("auth request failed")
		httpx.InternalError(w, r)
	}
}
