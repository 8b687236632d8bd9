package auth

import (
	"testing"
	"time"

	"whatsledger/config"
	"whatsledger/internal/domain"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "whatsledger"}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, "shop@example.com", domain.RoleBusiness)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.AccountID != 42 || claims.Role != domain.RoleBusiness || claims.Email != "shop@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := testJWTConfig()
	other := &config.JWTConfig{AccessSecret: "other", AccessExpiry: time.Hour}
	foreign, _ := GenerateAccessToken(other, 1, "a@b.c", domain.RoleAdmin)
	expiredCfg := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: -time.Minute}
	expired, _ := GenerateAccessToken(expiredCfg, 1, "a@b.c", domain.RoleAdmin)

	for name, tok := range map[string]string{"garbage": "not.a.jwt", "wrong secret": foreign, "expired": expired} {
		if _, err := ParseAccessToken(cfg, tok); err != ErrInvalidToken {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestClaimsHelpers(t *testing.T) {
	cfg := testJWTConfig()
	biz, _ := GenerateAccessToken(cfg, 7, "shop@example.com", domain.RoleBusiness)
	adm, _ := GenerateAccessToken(cfg, 1, "root@example.com", domain.RoleAdmin)

	bc, err := ParseAccessToken(cfg, biz)
	if err != nil {
		t.Fatal(err)
	}
	if bc.IsAdmin() || bc.BusinessID() != 7 || bc.Subject != "BUSINESS:7" {
		t.Errorf("business claims = %+v", bc)
	}
	ac, err := ParseAccessToken(cfg, adm)
	if err != nil {
		t.Fatal(err)
	}
	if !ac.IsAdmin() || ac.BusinessID() != 0 {
		t.Errorf("admin claims = %+v", ac)
	}
}

func TestGenerateRejectsUnknownRole(t *testing.T) {
	if _, err := GenerateAccessToken(testJWTConfig(), 1, "a@b.c", "CLIENT"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseChecksIssuer(t *testing.T) {
	other := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "someone-else"}
	tok, _ := GenerateAccessToken(other, 1, "a@b.c", domain.RoleAdmin)
	if _, err := ParseAccessToken(testJWTConfig(), tok); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
