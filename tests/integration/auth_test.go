package integration

import (
	"context"
	"testing"
	"time"

	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/store"
)

func TestVerificationTokenRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	token, err := store.IssueVerificationToken(ctx, db, "signin@example.com", "Signin User", time.Hour)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	email, name, err := store.ConsumeVerificationToken(ctx, db, token.Token)
	if err != nil {
		t.Fatalf("Consume token: %v", err)
	}
	if email != "signin@example.com" {
		t.Errorf("Expected identifier signin@example.com, got %s", email)
	}
	if name != "Signin User" {
		t.Errorf("Expected name to ride along with the token, got %q", name)
	}

	// Tokens are single-use.
	if _, _, err := store.ConsumeVerificationToken(ctx, db, token.Token); err != database.ErrTokenInvalid {
		t.Errorf("Expected invalid token on reuse, got: %v", err)
	}
}

func TestVerificationTokenExpired(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	token, err := store.IssueVerificationToken(ctx, db, "late@example.com", "", -time.Minute)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	if _, _, err := store.ConsumeVerificationToken(ctx, db, token.Token); err != database.ErrTokenInvalid {
		t.Errorf("Expected invalid token when expired, got: %v", err)
	}
}

// A name submitted at signin must survive the magic-link hop and land on the
// user record, mirroring what the callback handler does.
func TestMagicLinkNamePersists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	token, err := store.IssueVerificationToken(ctx, db, "named@example.com", "Named User", time.Hour)
	if err != nil {
		t.Fatalf("Issue token: %v", err)
	}

	email, name, err := store.ConsumeVerificationToken(ctx, db, token.Token)
	if err != nil {
		t.Fatalf("Consume token: %v", err)
	}

	user, err := store.UpsertUserByEmail(ctx, db, email, name)
	if err != nil {
		t.Fatalf("Upsert user: %v", err)
	}
	if user.Name != "Named User" {
		t.Errorf("Expected user name Named User, got %q", user.Name)
	}
}

func TestUpsertUserByEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	first, err := store.UpsertUserByEmail(ctx, db, "upsert@example.com", "First Name")
	if err != nil {
		t.Fatalf("Upsert user: %v", err)
	}

	// Signing in again without a name keeps the existing one.
	again, err := store.UpsertUserByEmail(ctx, db, "upsert@example.com", "")
	if err != nil {
		t.Fatalf("Upsert user again: %v", err)
	}

	if again.ID != first.ID {
		t.Errorf("Expected same user id, got %d and %d", first.ID, again.ID)
	}
	if again.Name != "First Name" {
		t.Errorf("Expected name preserved, got %q", again.Name)
	}
}
