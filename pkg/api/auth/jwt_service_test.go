package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/jababox/jababox/pkg/storage/models"
)

func testConfig() JWTConfig {
	return JWTConfig{
		Secret:               "test-secret-key-must-be-32-chars!",
		Issuer:               "test-issuer",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	}
}

func testAccount() *models.Account {
	return &models.Account{
		ID:             "test-uuid",
		Login:          "admin",
		QuotaGigabytes: 1,
	}
}

func TestNewJWTService_ValidConfig(t *testing.T) {
	service, err := NewJWTService(testConfig())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if service == nil {
		t.Fatal("Expected service to be non-nil")
	}
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	config := testConfig()
	config.Secret = ""

	if _, err := NewJWTService(config); err == nil {
		t.Fatal("Expected error for empty secret")
	}
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	config := testConfig()
	config.Secret = "short"

	if _, err := NewJWTService(config); err == nil {
		t.Fatal("Expected error for short secret")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, err := service.GenerateTokenPair(testAccount())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if tokenPair.AccessToken == "" {
		t.Error("Expected non-empty access token")
	}
	if tokenPair.RefreshToken == "" {
		t.Error("Expected non-empty refresh token")
	}
	if tokenPair.TokenType != "Bearer" {
		t.Errorf("Expected TokenType 'Bearer', got '%s'", tokenPair.TokenType)
	}
	if tokenPair.ExpiresIn != int64(15*time.Minute/time.Second) {
		t.Errorf("Expected ExpiresIn %d, got %d", int64(15*time.Minute/time.Second), tokenPair.ExpiresIn)
	}
}

func TestValidateAccessToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(testAccount())

	claims, err := service.ValidateAccessToken(tokenPair.AccessToken)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if claims.Login != "admin" {
		t.Errorf("Expected login 'admin', got '%s'", claims.Login)
	}
	if claims.AccountID != "test-uuid" {
		t.Errorf("Expected AccountID 'test-uuid', got '%s'", claims.AccountID)
	}
	if !claims.IsAccessToken() {
		t.Error("Expected IsAccessToken() to return true")
	}
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	if _, err := service.ValidateAccessToken("invalid-token"); err == nil {
		t.Fatal("Expected error for invalid token")
	}
}

func TestValidateAccessToken_WrongTokenType(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(testAccount())

	// Try to validate refresh token as access token
	_, err := service.ValidateAccessToken(tokenPair.RefreshToken)
	if !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType, got: %v", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(testAccount())

	claims, err := service.ValidateRefreshToken(tokenPair.RefreshToken)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !claims.IsRefreshToken() {
		t.Error("Expected IsRefreshToken() to return true")
	}

	// An access token must not validate as a refresh token.
	_, err = service.ValidateRefreshToken(tokenPair.AccessToken)
	if !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType, got: %v", err)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	service, _ := NewJWTService(testConfig())
	tokenPair, _ := service.GenerateTokenPair(testAccount())

	otherConfig := testConfig()
	otherConfig.Secret = "another-secret-key-of-32-chars!!!"
	other, _ := NewJWTService(otherConfig)

	if _, err := other.ValidateAccessToken(tokenPair.AccessToken); err == nil {
		t.Fatal("Expected error for token signed with a different secret")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	config := testConfig()
	config.AccessTokenDuration = -time.Minute
	service, _ := NewJWTService(config)

	tokenPair, err := service.GenerateTokenPair(testAccount())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := service.ValidateAccessToken(tokenPair.AccessToken); err == nil {
		t.Fatal("Expected error for expired token")
	}
}
