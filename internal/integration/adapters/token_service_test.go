package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/finflow/recurring-engine/internal/domain/error"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(context.Background(), userID, "user@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user ID %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("unexpected email %q", claims.Email)
	}
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(context.Background(), "not-a-token")
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Hour)
		token, err := other.GenerateAccessToken(context.Background(), uuid.New(), "user@example.com")
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		_, err = svc.ValidateAccessToken(context.Background(), token)
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenService("test-secret", -time.Minute)
		token, err := expired.GenerateAccessToken(context.Background(), uuid.New(), "user@example.com")
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		_, err = svc.ValidateAccessToken(context.Background(), token)
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
