package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/google/uuid"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "meadowcart",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	adminID := uuid.New()

	payload := AccessTokenPayload{
		AdminID: adminID,
		Email:   "admin@example.com",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.AdminID != adminID {
		t.Fatalf("expected admin id %s, got %s", adminID, claims.AdminID)
	}
	if claims.Email != "admin@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintAccessTokenPreservesJTI(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "meadowcart", ExpirationMinutes: 5}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), JTI: "fixed-jti"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID != "fixed-jti" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	mintCfg := config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationMinutes: 5}
	token, err := MintAccessToken(mintCfg, time.Now(), AccessTokenPayload{AdminID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	parseCfg := config.JWTConfig{Secret: "secret", Issuer: "meadowcart", ExpirationMinutes: 5}
	if _, err := ParseAccessToken(parseCfg, token); err == nil || !strings.Contains(err.Error(), "issuer") {
		t.Fatalf("expected issuer validation error, got %v", err)
	}
}

func TestMintAccessTokenRequiresAdminID(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "meadowcart", ExpirationMinutes: 5}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing admin id")
	}
}
