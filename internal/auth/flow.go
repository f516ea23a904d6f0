package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"arttimeline/internal/platform/crypto"
)

// FlowAudience separates flow-state tokens from access tokens.
const FlowAudience = "flow"

// Stage is the step a multi-request auth flow has reached.
type Stage string

const (
	StageRegistrationPending Stage = "registration_pending"
	StageTwoFactorPending    Stage = "two_factor_pending"
	StageResetPending        Stage = "reset_pending"
	StageResetVerified       Stage = "reset_verified"
)

type step string

const (
	stepResendRegistration step = "resend_registration"
	stepVerifyRegistration step = "verify_registration"
	stepResendTwoFactor    step = "resend_two_factor"
	stepVerifyTwoFactor    step = "verify_two_factor"
	stepResendReset        step = "resend_reset"
	stepVerifyReset        step = "verify_reset"
	stepResetPassword      step = "reset_password"
)

// requiredStage lists the only stage each step accepts.
var requiredStage = map[step]Stage{
	stepResendRegistration: StageRegistrationPending,
	stepVerifyRegistration: StageRegistrationPending,
	stepResendTwoFactor:    StageTwoFactorPending,
	stepVerifyTwoFactor:    StageTwoFactorPending,
	stepResendReset:        StageResetPending,
	stepVerifyReset:        StageResetPending,
	stepResetPassword:      StageResetVerified,
}

// resetVerifiedTTL is how long a user has to choose a new password after
// proving the reset code.
const resetVerifiedTTL = 15 * time.Minute

// FlowClaims is signed, not encrypted. Nothing secret beyond hashes goes in.
type FlowClaims struct {
	Stage        Stage  `json:"stage"`
	UserID       string `json:"uid,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"pwh,omitempty"`
	OTPHash      string `json:"otp,omitempty"`
	// Binding ties a reset_verified token to the code it was issued for.
	Binding string `json:"bind,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueFlow(c FlowClaims, ttl time.Duration) (string, error) {
	id, err := crypto.NewID()
	if err != nil {
		return "", err
	}
	now := s.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        id,
		Audience:  jwt.ClaimStrings{FlowAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return crypto.Sign(s.secret, c)
}

func (s *Service) parseFlow(token string, st step) (*FlowClaims, error) {
	var c FlowClaims
	if err := crypto.Parse(s.secret, token, FlowAudience, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlow, err)
	}
	if want := requiredStage[st]; c.Stage != want {
		return nil, fmt.Errorf("%w: stage %q cannot %s", ErrInvalidFlow, c.Stage, st)
	}
	return &c, nil
}

func binding(otpHash string) string {
	sum := sha256.Sum256([]byte(otpHash))
	return hex.EncodeToString(sum[:8])
}
