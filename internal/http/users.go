package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/entities"
)

// SessionIssuer covers the credential operations the user endpoints need.
type SessionIssuer interface {
	SignUp(name, email, password string) (*entities.User, *auth.TokenPair, error)
	SignIn(email, password string) (*auth.TokenPair, error)
	Refresh(refreshToken string) (*auth.TokenPair, error)
}

type UsersController struct {
	issuer SessionIssuer
}

func NewUsersController(issuer SessionIssuer) *UsersController {
	return &UsersController{issuer: issuer}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp registers a new user.
// POST /user/signup
func (uc *UsersController) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, pair, err := uc.issuer.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			respondConflict(c, "email already registered")
		case errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "sign up")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": pair})
}

// SignIn verifies credentials and returns a token pair.
// POST /user/signin
func (uc *UsersController) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	pair, err := uc.issuer.SignIn(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondUnauthorized(c, "invalid email or password")
			return
		}
		respondInternalError(c, err, "sign in")
		return
	}

	c.JSON(http.StatusOK, pair)
}

// RefreshToken exchanges the bearer refresh token for a new pair.
// POST /user/refresh
func (uc *UsersController) RefreshToken(c *gin.Context) {
	token, ok := auth.BearerToken(c)
	if !ok {
		respondUnauthorized(c, "missing bearer token")
		return
	}

	pair, err := uc.issuer.Refresh(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respondUnauthorized(c, "invalid refresh token")
			return
		}
		respondInternalError(c, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, pair)
}
