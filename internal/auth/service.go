package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"arttimeline/internal/platform/crypto"
	"arttimeline/internal/platform/mailer"
	"arttimeline/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrInvalidFlow        = errors.New("invalid or expired flow token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("no account for that email")
)

type Config struct {
	Secret         string
	AccessTokenTTL time.Duration
	OTPTTL         time.Duration
}

type Service struct {
	secret    string
	accessTTL time.Duration
	otpTTL    time.Duration
	users     Users
	blacklist Blacklist
	mail      mailer.Mailer
	now       func() time.Time
	log       zerolog.Logger
}

func NewService(cfg Config, users Users, blacklist Blacklist, mail mailer.Mailer, log zerolog.Logger) *Service {
	return &Service{
		secret:    cfg.Secret,
		accessTTL: cfg.AccessTokenTTL,
		otpTTL:    cfg.OTPTTL,
		users:     users,
		blacklist: blacklist,
		mail:      mail,
		now:       time.Now,
		log:       log,
	}
}

// Token is a bearer access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Flow is returned whenever the client must come back with a code.
type Flow struct {
	FlowToken string `json:"flow_token"`
	Stage     Stage  `json:"stage"`
	ExpiresIn int    `json:"expires_in"`
}

// LoginResult carries either a token or a pending two-factor flow.
type LoginResult struct {
	Token *Token
	Flow  *Flow
	User  user.User
}

func (s *Service) accessToken(userID string) (Token, error) {
	tok, _, err := crypto.GenerateToken(s.secret, userID, s.accessTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: tok, TokenType: "Bearer", ExpiresIn: int(s.accessTTL.Seconds())}, nil
}

func (s *Service) flow(c FlowClaims, ttl time.Duration) (Flow, error) {
	tok, err := s.issueFlow(c, ttl)
	if err != nil {
		return Flow{}, err
	}
	return Flow{FlowToken: tok, Stage: c.Stage, ExpiresIn: int(ttl.Seconds())}, nil
}

func (s *Service) sendOTP(ctx context.Context, p mailer.Purpose, to, name, code string) error {
	if err := s.mail.Send(ctx, mailer.OTPMessage(p, to, name, code, s.otpTTL)); err != nil {
		return fmt.Errorf("deliver %s code: %w", p, err)
	}
	return nil
}

// Register starts sign-up. No account exists until the emailed code is
// verified; the pending details travel in the flow token.
func (s *Service) Register(ctx context.Context, name, email, password string) (Flow, error) {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return Flow{}, err
	}
	if taken {
		return Flow{}, ErrEmailTaken
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return Flow{}, err
	}
	return s.startRegistration(ctx, FlowClaims{
		Stage:        StageRegistrationPending,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
}

func (s *Service) startRegistration(ctx context.Context, c FlowClaims) (Flow, error) {
	code, err := crypto.GenerateOTP()
	if err != nil {
		return Flow{}, err
	}
	c.OTPHash = crypto.HashOTP(s.secret, c.Email, code)
	if err := s.sendOTP(ctx, mailer.PurposeRegistration, c.Email, c.Name, code); err != nil {
		return Flow{}, err
	}
	return s.flow(c, s.otpTTL)
}

func (s *Service) ResendRegistration(ctx context.Context, flowToken string) (Flow, error) {
	c, err := s.parseFlow(flowToken, stepResendRegistration)
	if err != nil {
		return Flow{}, err
	}
	return s.startRegistration(ctx, FlowClaims{
		Stage:        StageRegistrationPending,
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
	})
}

// VerifyRegistration creates the verified account and signs it in.
func (s *Service) VerifyRegistration(ctx context.Context, flowToken, code string) (user.User, Token, error) {
	c, err := s.parseFlow(flowToken, stepVerifyRegistration)
	if err != nil {
		return user.User{}, Token{}, err
	}
	if !crypto.VerifyOTP(s.secret, c.Email, code, c.OTPHash) {
		return user.User{}, Token{}, ErrInvalidOTP
	}

	u, err := s.users.Create(ctx, c.Name, c.Email, c.PasswordHash, true)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, Token{}, ErrEmailTaken
		}
		return user.User{}, Token{}, err
	}
	tok, err := s.accessToken(u.ID)
	if err != nil {
		return user.User{}, Token{}, err
	}
	s.log.Info().Str("user_id", u.ID).Msg("registration verified")
	return u, tok, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		f, err := s.startTwoFactor(ctx, u)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{Flow: &f, User: u}, nil
	}

	tok, err := s.accessToken(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: &tok, User: u}, nil
}

// issueUserOTP stores a fresh hashed code on the user and emails it.
func (s *Service) issueUserOTP(ctx context.Context, u user.User, p mailer.Purpose) (string, error) {
	code, err := crypto.GenerateOTP()
	if err != nil {
		return "", err
	}
	hash := crypto.HashOTP(s.secret, u.ID, code)
	if err := s.users.SetOTP(ctx, u.ID, hash, s.now().Add(s.otpTTL)); err != nil {
		return "", err
	}
	if err := s.sendOTP(ctx, p, u.Email, u.Name, code); err != nil {
		return "", err
	}
	return hash, nil
}

func (s *Service) startTwoFactor(ctx context.Context, u user.User) (Flow, error) {
	if _, err := s.issueUserOTP(ctx, u, mailer.PurposeTwoFactor); err != nil {
		return Flow{}, err
	}
	return s.flow(FlowClaims{Stage: StageTwoFactorPending, UserID: u.ID}, s.otpTTL)
}

func (s *Service) ResendTwoFactor(ctx context.Context, flowToken string) (Flow, error) {
	c, err := s.parseFlow(flowToken, stepResendTwoFactor)
	if err != nil {
		return Flow{}, err
	}
	u, err := s.flowUser(ctx, c.UserID)
	if err != nil {
		return Flow{}, err
	}
	return s.startTwoFactor(ctx, u)
}

func (s *Service) VerifyTwoFactor(ctx context.Context, flowToken, code string) (user.User, Token, error) {
	c, err := s.parseFlow(flowToken, stepVerifyTwoFactor)
	if err != nil {
		return user.User{}, Token{}, err
	}
	u, err := s.flowUser(ctx, c.UserID)
	if err != nil {
		return user.User{}, Token{}, err
	}
	if !u.OTPValid(s.now()) || !crypto.VerifyOTP(s.secret, u.ID, code, u.OTPHash) {
		return user.User{}, Token{}, ErrInvalidOTP
	}
	if err := s.users.ClearOTP(ctx, u.ID); err != nil {
		return user.User{}, Token{}, err
	}
	tok, err := s.accessToken(u.ID)
	if err != nil {
		return user.User{}, Token{}, err
	}
	return u, tok, nil
}

// ForgotPassword emails a reset code. Unknown emails are reported as such.
func (s *Service) ForgotPassword(ctx context.Context, email string) (Flow, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Flow{}, ErrUserNotFound
		}
		return Flow{}, err
	}
	return s.startReset(ctx, u)
}

func (s *Service) startReset(ctx context.Context, u user.User) (Flow, error) {
	if _, err := s.issueUserOTP(ctx, u, mailer.PurposePasswordReset); err != nil {
		return Flow{}, err
	}
	return s.flow(FlowClaims{Stage: StageResetPending, UserID: u.ID, Email: u.Email}, s.otpTTL)
}

func (s *Service) ResendPasswordReset(ctx context.Context, flowToken string) (Flow, error) {
	c, err := s.parseFlow(flowToken, stepResendReset)
	if err != nil {
		return Flow{}, err
	}
	u, err := s.flowUser(ctx, c.UserID)
	if err != nil {
		return Flow{}, err
	}
	return s.startReset(ctx, u)
}

// VerifyPasswordReset checks the code and hands out a short-lived token
// that permits exactly one password change.
func (s *Service) VerifyPasswordReset(ctx context.Context, flowToken, code string) (Flow, error) {
	c, err := s.parseFlow(flowToken, stepVerifyReset)
	if err != nil {
		return Flow{}, err
	}
	u, err := s.flowUser(ctx, c.UserID)
	if err != nil {
		return Flow{}, err
	}
	if !u.OTPValid(s.now()) || !crypto.VerifyOTP(s.secret, u.ID, code, u.OTPHash) {
		return Flow{}, ErrInvalidOTP
	}
	return s.flow(FlowClaims{
		Stage:   StageResetVerified,
		UserID:  u.ID,
		Binding: binding(u.OTPHash),
	}, resetVerifiedTTL)
}

func (s *Service) ResetPassword(ctx context.Context, flowToken, password string) error {
	c, err := s.parseFlow(flowToken, stepResetPassword)
	if err != nil {
		return err
	}
	u, err := s.flowUser(ctx, c.UserID)
	if err != nil {
		return err
	}
	// The code is cleared below, so a second use of the token fails here.
	if u.OTPHash == "" || binding(u.OTPHash) != c.Binding {
		return ErrInvalidFlow
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.users.ClearOTP(ctx, u.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", u.ID).Msg("password reset")
	return nil
}

// Logout revokes the presented access token until it would have expired.
func (s *Service) Logout(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.accessTTL)
	}
	return s.blacklist.AddToken(ctx, jti, userID, expiresAt)
}

func (s *Service) Me(ctx context.Context, userID string) (user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// SetTwoFactor toggles email codes at login. The current password is
// required either way.
func (s *Service) SetTwoFactor(ctx context.Context, userID string, enabled bool, password string) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}
	if err := s.users.SetTwoFactor(ctx, userID, enabled); err != nil {
		return user.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// flowUser loads the account a flow token refers to. An account deleted
// mid-flow makes the token invalid.
func (s *Service) flowUser(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidFlow
		}
		return user.User{}, err
	}
	return u, nil
}
