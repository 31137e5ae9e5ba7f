package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HushmKun/SeekerOfLight/internal/app_errors"
	"github.com/HushmKun/SeekerOfLight/internal/models"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

const accessTokenType = "access"

var signingMethod = jwt.SigningMethodHS256

// Identity is the authenticated caller as asserted by the external identity
// provider. Components receive it as an explicit argument, never from
// ambient state.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

type AccessTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	jwt.RegisteredClaims
}

type userRepo interface {
	EnsureUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Verifier validates access tokens minted by the external identity provider
// over a shared HS256 secret. It never issues tokens. First-seen subjects
// are provisioned so progress rows have a referential anchor.
type Verifier struct {
	log       logger.Log
	secretKey string
	issuer    string
	users     userRepo
}

func NewVerifier(log logger.Log, secretKey, issuer string, users userRepo) *Verifier {
	return &Verifier{
		log:       log,
		secretKey: secretKey,
		issuer:    issuer,
		users:     users,
	}
}

// Verify parses and validates a bearer token and returns the caller identity.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	if claims.TokenType != accessTokenType {
		return nil, fmt.Errorf("wrong token type: expected %q, got %q", accessTokenType, claims.TokenType)
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("wrong token issuer: %q", claims.Issuer)
	}

	userID := claims.UserID
	if userID == uuid.Nil && claims.Subject != "" {
		userID, err = uuid.Parse(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("invalid token subject: %w", err)
		}
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("token carries no subject")
	}

	if err := v.users.EnsureUser(ctx, models.User{
		ID:       userID,
		Email:    claims.Email,
		IsActive: true,
	}); err != nil {
		return nil, err
	}

	return &Identity{UserID: userID, Email: claims.Email, Roles: claims.Roles}, nil
}

// User returns the provisioned profile row for a subject.
func (v *Verifier) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return v.users.UserByID(ctx, id)
}
