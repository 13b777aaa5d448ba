package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := Generate("user-123", "ann", secret, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := Parse(tok, secret)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != "user-123" || claims.Username != "ann" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := Generate("u1", "ann", secret, -time.Second)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	_, err = Parse(tok, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := Generate("u2", "bob", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	_, err = Parse(tok, []byte("wrong-secret"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse("not.a.jwt", []byte("k")); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u3"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := Parse(tok, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParse_MissingUser(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := Generate("", "ann", secret, time.Hour)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := Parse(tok, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
