package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrWrongRole    = errors.New("token was issued for a different role")
)

type carebookClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// JWTManager issues and verifies the bearer tokens for all three roles.
// Admin tokens identify the static configured admin by email; doctor and
// patient tokens carry the record id as the subject.
type JWTManager struct {
	cfg config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg}
}

func (m *JWTManager) IssueAdminToken(email string) (string, error) {
	return m.issue(domain.Claims{Email: email, Role: domain.RoleAdmin}, m.cfg.AdminTokenTTL)
}

func (m *JWTManager) IssueDoctorToken(id uuid.UUID, email string) (string, error) {
	return m.issue(domain.Claims{Subject: id, Email: email, Role: domain.RoleDoctor}, m.cfg.DoctorTokenTTL)
}

func (m *JWTManager) IssuePatientToken(id uuid.UUID, email string) (string, error) {
	return m.issue(domain.Claims{Subject: id, Email: email, Role: domain.RolePatient}, m.cfg.PatientTokenTTL)
}

// Verify validates a token and checks it was issued for the wanted role.
func (m *JWTManager) Verify(tokenString string, want domain.Role) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&carebookClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*carebookClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return nil, ErrTokenInvalid
	}
	if role != want {
		return nil, ErrWrongRole
	}

	out := &domain.Claims{Email: claims.Email, Role: role}
	if role != domain.RoleAdmin {
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, ErrTokenInvalid
		}
		out.Subject = id
	}

	return out, nil
}

func (m *JWTManager) issue(claims domain.Claims, ttl time.Duration) (string, error) {
	now := time.Now()

	subject := ""
	if claims.Role != domain.RoleAdmin {
		subject = claims.Subject.String()
	}

	jwtClaims := carebookClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// Skew tolerance for clock drift between issuer and verifier.
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
		Email: claims.Email,
		Role:  string(claims.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(m.cfg.Secret))
}
