package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/openshelf/bookshelf/internal/database/users"
	"github.com/openshelf/bookshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTaken         = users.ErrEmailTaken
)

// Service is the session issuer: it verifies credentials and hands out
// signed access/refresh token pairs.
type Service struct {
	users  *users.Repository
	tokens *TokenManager

	bcryptCost int
}

// NewService creates an authentication service.
func NewService(userRepo *users.Repository, tokens *TokenManager, bcryptCost int) *Service {
	return &Service{
		users:      userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// SignUp registers a new user and issues their first token pair. Only the
// bcrypt hash of the password is stored.
func (s *Service) SignUp(name, email, password string) (*entities.User, *TokenPair, error) {
	if email == "" {
		return nil, nil, ErrEmailRequired
	}
	if password == "" {
		return nil, nil, ErrPasswordRequired
	}
	// RFC 5321 caps addresses at 254 characters
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, nil, ErrEmailInvalid
	}

	passwordHash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Create(name, email, passwordHash)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	return user, pair, nil
}

// SignIn verifies credentials and issues a token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) SignIn(email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.tokens.IssuePair(user.ID)
}

// Refresh exchanges a valid refresh token for a new pair with the full
// sign-in lifetimes. The token must verify, carry the refresh scope, and
// its subject must still resolve to a user.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Scope != ScopeRefresh {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, ErrInvalidToken
	}

	return s.tokens.IssuePair(userID)
}

// ResolveAccessToken validates an access token and returns the user id it
// was issued for. Used by the request middleware.
func (s *Service) ResolveAccessToken(tokenStr string) (uint, error) {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if claims.Scope != ScopeAccess {
		return 0, ErrInvalidToken
	}
	return claims.UserID()
}
