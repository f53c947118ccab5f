package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/agencypulse/reporting-backend/pkg/auth"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/db/models"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/security"
)

type operatorsRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Operator, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Operator, error)
}

// sessionStore is the Redis surface the auth flow needs: rotating refresh
// tokens plus the fixed-window login limiter.
type sessionStore interface {
	StoreRefreshToken(ctx context.Context, operatorID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, operatorID string) (string, error)
	RevokeRefreshToken(ctx context.Context, operatorID string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Service handles operator authentication.
type Service interface {
	Login(ctx context.Context, input LoginInput, remoteIP string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, operatorID uuid.UUID) error
}

type service struct {
	repo     operatorsRepository
	sessions sessionStore
	jwtCfg   config.JWTConfig
	rateCfg  config.AuthRateLimitConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(repo operatorsRepository, sessions sessionStore, jwtCfg config.JWTConfig, rateCfg config.AuthRateLimitConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("operators repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		rateCfg:  rateCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput, remoteIP string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allowLogin(ctx, email, remoteIP); err != nil {
		return nil, err
	}

	operator, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching operator")
	}

	ok, err := security.VerifyPassword(input.Password, operator.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	tokens, err := s.issueTokens(ctx, operator)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOperatorID(ctx, operator.ID.String()), "operator logged in")

	return &LoginResult{Operator: toOperatorItem(*operator), Tokens: *tokens}, nil
}

// Refresh rotates the refresh token and issues a new access token. Tokens are
// operator-scoped and single-valued, so a rotation invalidates every older one.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	operatorID, secret, err := splitRefreshToken(refreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	stored, err := s.sessions.GetRefreshToken(ctx, operatorID.String())
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	operator, err := s.repo.FindByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching operator")
	}

	return s.issueTokens(ctx, operator)
}

func (s *service) Logout(ctx context.Context, operatorID uuid.UUID) error {
	if operatorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "operator id required")
	}
	if err := s.sessions.RevokeRefreshToken(ctx, operatorID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking refresh token")
	}
	return nil
}

func (s *service) allowLogin(ctx context.Context, email, remoteIP string) error {
	allowed, _, err := s.sessions.FixedWindowAllow(ctx, "login:email:"+email,
		int64(s.rateCfg.LoginEmailLimit), s.rateCfg.LoginWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking login rate limit")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
	}

	if remoteIP != "" {
		allowed, _, err = s.sessions.FixedWindowAllow(ctx, "login:ip:"+remoteIP,
			int64(s.rateCfg.LoginIPLimit), s.rateCfg.LoginWindow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking login rate limit")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, operator *models.Operator) (*TokenPair, error) {
	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		OperatorID: operator.ID,
		Role:       operator.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	secret := uuid.NewString()
	if err := s.sessions.StoreRefreshToken(ctx, operator.ID.String(), secret, s.jwtCfg.RefreshTokenTTL()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing refresh token")
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     joinRefreshToken(operator.ID, secret),
		ExpiresInSeconds: s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}

// Refresh tokens are "{operatorID}.{secret}" so the store can be keyed by
// operator without decoding anything server-side.
func joinRefreshToken(operatorID uuid.UUID, secret string) string {
	return operatorID.String() + "." + secret
}

func splitRefreshToken(token string) (uuid.UUID, string, error) {
	idPart, secret, found := strings.Cut(token, ".")
	if !found || secret == "" {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token")
	}
	operatorID, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed refresh token: %w", err)
	}
	return operatorID, secret, nil
}
