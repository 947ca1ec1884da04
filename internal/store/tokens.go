package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

// IssueVerificationToken creates a single-use magic-link token for the email
// address. The optional display name rides along so the sign-in callback can
// set it on the user.
func IssueVerificationToken(ctx context.Context, db *sql.DB, email, name string, ttl time.Duration) (*models.VerificationToken, error) {
	token := &models.VerificationToken{}

	query := `
		INSERT INTO verification_tokens (identifier, name, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, identifier, name, token, expires_at, created_at`

	err := db.QueryRowContext(ctx, query, email, name, uuid.NewString(), time.Now().Add(ttl)).Scan(
		&token.ID,
		&token.Identifier,
		&token.Name,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	return token, nil
}

// ConsumeVerificationToken deletes the token and returns the email and name it
// was issued for. Unknown or expired tokens fail; the delete makes the token
// single-use.
func ConsumeVerificationToken(ctx context.Context, db *sql.DB, token string) (string, string, error) {
	var identifier, name string

	err := db.QueryRowContext(ctx,
		`DELETE FROM verification_tokens
		 WHERE token = $1 AND expires_at > NOW()
		 RETURNING identifier, name`,
		token).Scan(&identifier, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", database.ErrTokenInvalid
		}
		return "", "", fmt.Errorf("consume verification token: %w", err)
	}

	return identifier, name, nil
}
