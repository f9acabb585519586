package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jababox/jababox/pkg/storage/models"
)

var (
	// ErrInvalidToken indicates the token failed signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidTokenType indicates an access token was presented where a
	// refresh token was expected, or vice versa.
	ErrInvalidTokenType = errors.New("invalid token type")
)

// minSecretLength is the minimum accepted HMAC secret length. HS256 with a
// short secret is trivially brute-forceable.
const minSecretLength = 32

// JWTConfig configures the JWT service.
type JWTConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	Secret string

	// Issuer is the value of the "iss" claim.
	Issuer string

	// AccessTokenDuration is the lifetime of access tokens.
	AccessTokenDuration time.Duration

	// RefreshTokenDuration is the lifetime of refresh tokens.
	RefreshTokenDuration time.Duration
}

// TokenPair holds a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// JWTService issues and validates HMAC-signed JWT token pairs.
type JWTService struct {
	config JWTConfig
	secret []byte
}

// NewJWTService creates a JWT service from the config. The secret must be
// at least 32 characters long.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if config.Secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if len(config.Secret) < minSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters", minSecretLength)
	}
	if config.AccessTokenDuration == 0 {
		config.AccessTokenDuration = 15 * time.Minute
	}
	if config.RefreshTokenDuration == 0 {
		config.RefreshTokenDuration = 7 * 24 * time.Hour
	}

	return &JWTService{
		config: config,
		secret: []byte(config.Secret),
	}, nil
}

// GenerateTokenPair issues an access and refresh token for the account.
func (s *JWTService) GenerateTokenPair(account *models.Account) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := s.signToken(account, TokenTypeAccess, now, s.config.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.signToken(account, TokenTypeRefresh, now, s.config.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessTokenDuration / time.Second),
	}, nil
}

func (s *JWTService) signToken(account *models.Account, tokenType TokenType, now time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		AccountID: account.ID,
		Login:     account.Login,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken parses and validates an access token, returning its
// claims. A refresh token fails with ErrInvalidTokenType.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAccessToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token, returning its
// claims. An access token fails with ErrInvalidTokenType.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
