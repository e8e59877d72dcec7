package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"soberhaven.org/internal/authz"
)

const (
	issuer            = "soberhaven"
	secretEnvVariable = "SOBERHAVEN_AUTH_SECRET"
)

var (
	errMissingSecret = errors.New("identity: auth secret is not configured")

	secretMu sync.Mutex
	secret   cachedSecret
)

type cachedSecret struct {
	value []byte
	err   error
	ready bool
}

// ErrInvalidToken indicates the credential failed verification.
var ErrInvalidToken = errors.New("identity: invalid token")

// ErrRevoked indicates the credential was explicitly revoked before expiry.
var ErrRevoked = errors.New("identity: token revoked")

// ErrRevocationUnavailable indicates no revocation list is configured.
var ErrRevocationUnavailable = errors.New("identity: revocation is not configured")

// tokenClaims is the wire shape of an access token. role and tenant_id are
// the custom claims every authorization decision reads.
type tokenClaims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// RevocationList remembers revoked token ids until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service issues and verifies the platform's bearer credentials using HS256.
// It stands in for the hosted identity provider that the rest of the system
// treats as an external collaborator behind authz.Verifier.
type Service struct {
	revocations RevocationList
	now         func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithRevocationList enables the revoked-token check during verification.
func WithRevocationList(list RevocationList) Option {
	return func(s *Service) { s.revocations = list }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the identity service.
func NewService(opts ...Option) *Service {
	svc := &Service{now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// IssueToken signs a credential for the given subject. Non-super-admin
// subjects are bound to exactly one home tenant; super_admin tokens carry
// no tenant at all.
func (s *Service) IssueToken(subjectID string, role authz.Role, tenantID string, ttl time.Duration) (string, time.Time, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", time.Time{}, errors.New("identity: subjectID is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("identity: ttl must be greater than zero")
	}
	if _, err := authz.ParseRole(string(role)); err != nil {
		return "", time.Time{}, err
	}
	tenantID = strings.TrimSpace(tenantID)
	if role == authz.RoleSuperAdmin {
		if tenantID != "" {
			return "", time.Time{}, errors.New("identity: super_admin tokens must not carry a tenant")
		}
	} else if tenantID == "" {
		return "", time.Time{}, fmt.Errorf("identity: role %s requires a home tenant", role)
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := tokenClaims{
		Role:     string(role),
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the credential's signature and claims and adapts them into
// the shape authorization decisions consume. Any failure, including an
// unreachable revocation list, is a denial — never an indeterminate state.
func (s *Service) Verify(ctx context.Context, credential string) (authz.Claims, error) {
	claims, err := s.parseAndValidate(credential)
	if err != nil {
		return authz.Claims{}, err
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return authz.Claims{}, fmt.Errorf("identity: revocation check: %w", err)
		}
		if revoked {
			return authz.Claims{}, ErrRevoked
		}
	}
	role, err := authz.ParseRole(claims.Role)
	if err != nil {
		return authz.Claims{}, ErrInvalidToken
	}
	if role != authz.RoleSuperAdmin && claims.TenantID == "" {
		return authz.Claims{}, ErrInvalidToken
	}
	return authz.Claims{
		SubjectID: claims.Subject,
		Role:      role,
		TenantID:  claims.TenantID,
	}, nil
}

// Revoke invalidates a still-valid credential ahead of its expiry.
func (s *Service) Revoke(ctx context.Context, credential string) error {
	if s.revocations == nil {
		return ErrRevocationUnavailable
	}
	claims, err := s.parseAndValidate(credential)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

func (s *Service) parseAndValidate(credential string) (*tokenClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrInvalidToken
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(credential, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secretBytes, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := validateClaims(claims, s.now().UTC()); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateClaims(claims *tokenClaims, now time.Time) error {
	if claims.Issuer != issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	if claims.ID == "" {
		return errors.New("token id missing")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}

func loadSecret() ([]byte, error) {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secret.ready {
		return secret.value, secret.err
	}
	raw := strings.TrimSpace(os.Getenv(secretEnvVariable))
	if raw == "" {
		secret.err = errMissingSecret
		secret.ready = true
		return nil, secret.err
	}
	secret.value = []byte(raw)
	secret.err = nil
	secret.ready = true
	return secret.value, nil
}

// ResetSecretForTests clears the cached secret value. Only intended for test use.
func ResetSecretForTests() {
	secretMu.Lock()
	defer secretMu.Unlock()
	secret = cachedSecret{}
}
