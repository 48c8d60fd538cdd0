package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/services"
	"github.com/fintrackhq/fintrack/pkg/response"
)

// AuthHandler issues access tokens. Registration seeds default categories
// through the user service.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// Register creates a user account and returns an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Currency string `json:"currency"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	user, err := h.users.Create(requestContext(c), services.CreateUserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Currency: payload.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &payload) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), payload.Email, payload.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "token": token})
}
