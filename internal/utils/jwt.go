package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/whitelabel-hq/auth-service/internal/domain"
)

// Token lifetimes are fixed policy constants, not configurable per call.
const (
	AccessTokenTTL     = time.Hour
	RefreshTokenTTL    = 7 * 24 * time.Hour
	ResetTokenTTL      = time.Hour
	ActivationTokenTTL = time.Hour
)

// Purpose values carried by single-use tokens. Access and refresh tokens
// carry no purpose claim; a token presented for the wrong purpose must be
// rejected by the caller.
const (
	PurposePasswordReset     = "password_reset"
	PurposeAccountActivation = "account_activation"
)

// SecretKind selects which signing secret verifies a token.
type SecretKind int

const (
	AccessSecret SecretKind = iota
	RefreshSecret
)

var (
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenMalformed is returned when the signature or structure is invalid.
	ErrTokenMalformed = errors.New("token is malformed")
)

// JWTManager signs and verifies the service's HS256 tokens. Access and
// refresh tokens use distinct secrets; reset and activation tokens are
// signed with the access secret.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(accessSecret, refreshSecret string) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (j *JWTManager) secretFor(kind SecretKind) []byte {
	if kind == RefreshSecret {
		return j.refreshSecret
	}
	return j.accessSecret
}

func (j *JWTManager) sign(claims jwt.MapClaims, kind SecretKind) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// IssuePair issues a fresh access/refresh token pair carrying the claim set
// {user_id, email, company_id, provider}.
func (j *JWTManager) IssuePair(userID, email, companyID string, provider domain.Provider) (*domain.TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(AccessTokenTTL)
	refreshExp := now.Add(RefreshTokenTTL)

	accessToken, err := j.sign(jwt.MapClaims{
		"user_id":    userID,
		"email":      email,
		"company_id": companyID,
		"provider":   string(provider),
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}, AccessSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := j.sign(jwt.MapClaims{
		"user_id":    userID,
		"email":      email,
		"company_id": companyID,
		"provider":   string(provider),
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}, RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// IssueResetToken issues a short-lived password reset token bound to a user
// and email.
func (j *JWTManager) IssueResetToken(userID, email string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ResetTokenTTL)
	token, err := j.sign(jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"purpose": PurposePasswordReset,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	}, AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// IssueActivationToken issues a short-lived account activation token.
func (j *JWTManager) IssueActivationToken(userID, email string) (string, error) {
	return j.sign(jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"purpose": PurposeAccountActivation,
		"exp":     time.Now().Add(ActivationTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}, AccessSecret)
}

// Verify parses and verifies a token against the secret of the given kind
// and returns its claims. Returns ErrTokenExpired past expiry and
// ErrTokenMalformed for any structural or signature problem. Authorization
// scoping is the caller's job.
func (j *JWTManager) Verify(tokenString string, kind SecretKind) (*domain.TokenClaims, error) {
	return j.parse(tokenString, kind, true)
}

// VerifyIgnoringExpiry verifies the signature but tolerates an expired
// token. Logout uses this so an expired session can still be terminated.
func (j *JWTManager) VerifyIgnoringExpiry(tokenString string, kind SecretKind) (*domain.TokenClaims, error) {
	return j.parse(tokenString, kind, false)
}

func (j *JWTManager) parse(tokenString string, kind SecretKind, checkExpiry bool) (*domain.TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretFor(kind), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenMalformed
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	if checkExpiry && claims.IsExpired() {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// DecodeUnverified extracts claims without any signature or expiry check.
// Only safe for tokens received directly from a trusted endpoint over TLS
// in the same exchange, such as the Google ID token.
func DecodeUnverified(tokenString string) (jwt.MapClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrTokenMalformed
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return mapClaims, nil
}

func claimsFromMap(m jwt.MapClaims) (*domain.TokenClaims, error) {
	userID, ok := m["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid user_id in token")
	}

	email, ok := m["email"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid email in token")
	}

	exp, ok := m["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in token")
	}

	iat, _ := m["iat"].(float64)
	companyID, _ := m["company_id"].(string)
	provider, _ := m["provider"].(string)
	purpose, _ := m["purpose"].(string)

	return &domain.TokenClaims{
		UserID:    userID,
		Email:     email,
		CompanyID: companyID,
		Provider:  domain.Provider(provider),
		Purpose:   purpose,
		Exp:       int64(exp),
		Iat:       int64(iat),
	}, nil
}
