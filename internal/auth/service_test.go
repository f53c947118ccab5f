package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/agencypulse/reporting-backend/pkg/auth"
	"github.com/agencypulse/reporting-backend/pkg/config"
	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/redis"
	"github.com/agencypulse/reporting-backend/pkg/security"
)

type stubOperatorsRepo struct {
	operator *models.Operator
}

func (s *stubOperatorsRepo) FindByEmail(ctx context.Context, email string) (*models.Operator, error) {
	if s.operator == nil || strings.ToLower(s.operator.Email) != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.operator, nil
}

func (s *stubOperatorsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Operator, error) {
	if s.operator == nil || s.operator.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.operator, nil
}

type stubSessions struct {
	tokens      map[string]string
	windowCalls map[string]int64
	denyScopes  map[string]bool
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		tokens:      map[string]string{},
		windowCalls: map[string]int64{},
		denyScopes:  map[string]bool{},
	}
}

func (s *stubSessions) StoreRefreshToken(ctx context.Context, operatorID, token string, ttl time.Duration) error {
	s.tokens[operatorID] = token
	return nil
}

func (s *stubSessions) GetRefreshToken(ctx context.Context, operatorID string) (string, error) {
	token, ok := s.tokens[operatorID]
	if !ok {
		return "", redis.Nil
	}
	return token, nil
}

func (s *stubSessions) RevokeRefreshToken(ctx context.Context, operatorID string) error {
	delete(s.tokens, operatorID)
	return nil
}

func (s *stubSessions) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.windowCalls[scope]++
	if s.denyScopes[scope] {
		return false, limit, nil
	}
	return true, s.windowCalls[scope], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "agencypulse-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testRateConfig() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginEmailLimit: 5,
		LoginIPLimit:    20,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seedOperator(t *testing.T, password string) *models.Operator {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &models.Operator{
		ID:           uuid.New(),
		Email:        "ops@agency.test",
		PasswordHash: hash,
		DisplayName:  "Ops",
		Role:         enums.OperatorRoleAdmin,
	}
}

func newTestService(t *testing.T, repo operatorsRepository, sessions sessionStore) Service {
	t.Helper()
	svc, err := NewService(repo, sessions, testJWTConfig(), testRateConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginSuccess(t *testing.T) {
	operator := seedOperator(t, "correct horse")
	sessions := newStubSessions()
	svc := newTestService(t, &stubOperatorsRepo{operator: operator}, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "Ops@Agency.test",
		Password: "correct horse",
	}, "203.0.113.9")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Operator.ID != operator.ID {
		t.Fatalf("unexpected operator %+v", result.Operator)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.OperatorID != operator.ID || claims.Role != enums.OperatorRoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, ok := sessions.tokens[operator.ID.String()]; !ok {
		t.Fatal("refresh token not stored")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	operator := seedOperator(t, "correct horse")
	svc := newTestService(t, &stubOperatorsRepo{operator: operator}, newStubSessions())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ops@agency.test",
		Password: "battery staple",
	}, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	svc := newTestService(t, &stubOperatorsRepo{}, newStubSessions())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@agency.test",
		Password: "whatever",
	}, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	operator := seedOperator(t, "correct horse")
	sessions := newStubSessions()
	sessions.denyScopes["login:email:ops@agency.test"] = true
	svc := newTestService(t, &stubOperatorsRepo{operator: operator}, sessions)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ops@agency.test",
		Password: "correct horse",
	}, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	operator := seedOperator(t, "correct horse")
	sessions := newStubSessions()
	svc := newTestService(t, &stubOperatorsRepo{operator: operator}, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "ops@agency.test",
		Password: "correct horse",
	}, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == result.Tokens.RefreshToken {
		t.Fatal("refresh must rotate the token")
	}

	// The pre-rotation token is dead.
	_, err = svc.Refresh(context.Background(), result.Tokens.RefreshToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for stale token, got %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := newTestService(t, &stubOperatorsRepo{}, newStubSessions())

	for _, token := range []string{"", "not-a-token", uuid.NewString(), uuid.NewString() + "."} {
		_, err := svc.Refresh(context.Background(), token)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("token %q: expected unauthorized, got %v", token, err)
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	operator := seedOperator(t, "correct horse")
	sessions := newStubSessions()
	svc := newTestService(t, &stubOperatorsRepo{operator: operator}, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "ops@agency.test",
		Password: "correct horse",
	}, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), operator.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, err = svc.Refresh(context.Background(), result.Tokens.RefreshToken)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestSplitRefreshToken(t *testing.T) {
	id := uuid.New()
	gotID, secret, err := splitRefreshToken(joinRefreshToken(id, "abc"))
	if err != nil {
		t.Fatalf("splitRefreshToken: %v", err)
	}
	if gotID != id || secret != "abc" {
		t.Fatalf("round trip mismatch: %s %s", gotID, secret)
	}
	if _, _, err := splitRefreshToken("zzz.abc"); err == nil {
		t.Fatal("expected error for bad uuid")
	}
}
