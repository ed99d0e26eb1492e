package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
	"expensetracker/internal/response"
	"expensetracker/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	tokens       *middleware.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService, tokens: tokens}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name   *string          `json:"name" binding:"omitempty,max=50"`
	Budget *decimal.Decimal `json:"budget" swaggertype:"number"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Budget    decimal.Decimal `json:"budget" swaggertype:"number"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuthResponse represents the authenticated user together with a session token
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Budget:    user.Budget,
		CreatedAt: user.CreatedAt.UTC(),
	}
}

func (h *AuthHandler) authResponse(user *models.User) (AuthResponse, error) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		return AuthResponse{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return AuthResponse{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with name, email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} response.Envelope{data=AuthResponse} "User registered and token generated"
// @Failure     400 {object} response.Envelope "Invalid input or user already exists"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, models.AuditRegister, models.ResourceUser, user.ID, c.ClientIP(), nil)

	response.Success(c, http.StatusCreated, resp)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} response.Envelope{data=AuthResponse} "User authenticated and token generated"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Invalid credentials"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, models.AuditLogin, models.ResourceUser, user.ID, c.ClientIP(), nil)

	response.Success(c, http.StatusOK, resp)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} response.Envelope{data=UserResponse} "User profile"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, profileError(err))
		return
	}

	response.Success(c, http.StatusOK, newUserResponse(user))
}

// UpdateProfile changes the user's name or monthly budget
// @Summary     Update user profile
// @Description Update the authenticated user's name and/or budget
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to update"
// @Success     200 {object} response.Envelope{data=UserResponse} "Updated profile"
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     500 {object} response.Envelope "Server error"
// @Router      /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.ProfileUpdateFields{
		Name:   req.Name,
		Budget: req.Budget,
	})
	if err != nil {
		respondWithError(c, profileError(err))
		return
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Budget != nil {
		changes["budget"] = req.Budget.String()
	}
	h.auditService.Log(userID, models.AuditUpdateProfile, models.ResourceUser, userID, c.ClientIP(), changes)

	response.Success(c, http.StatusOK, newUserResponse(user))
}

// profileError reports a deleted account behind a valid token as unauthorized.
func profileError(err error) error {
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.WithMessage(apperrors.ErrUnauthorized, "Not authorized, user not found")
	}
	return err
}
