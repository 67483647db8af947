package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userRepo            repository.UserRepository
	notificationService *service.NotificationService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository, notificationService *service.NotificationService) *UserHandler {
	return &UserHandler{
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role,omitempty"` // rider, driver, admin; defaults to rider
}

// SetStatusRequest is the HTTP request body for toggling a user's active
// flag.
type SetStatusRequest struct {
	Active *bool `json:"active"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Role   string  `json:"role"`
	Active bool    `json:"active"`
	Rating float64 `json:"rating,omitempty"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Phone:  user.Phone,
		Role:   string(user.Role),
		Active: user.Active,
		Rating: user.AverageRating(),
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleRider
	}
	if role != domain.RoleRider && role != domain.RoleDriver && role != domain.RoleAdmin {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "role must be rider, driver or admin"})
		return
	}

	// Check if user already exists
	existing, err := h.userRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "User already registered",
			"user":    toUserResponse(existing),
		})
		return
	}

	user := &domain.User{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Phone:  req.Phone,
		Role:   role,
		Active: true,
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// SetStatus handles PATCH /v1/users/:id/status
//
// Suspended users keep their data but drop out of announcement audiences.
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "active flag is required"})
		return
	}

	userID := c.Param("id")
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	active := *req.Active
	if err := h.userRepo.SetActive(c.Request.Context(), userID, active); err != nil {
		respondError(c, err)
		return
	}
	user.Active = active

	if h.notificationService != nil {
		message := "Your account has been suspended."
		if active {
			message = "Your account has been reactivated."
		}
		h.notificationService.CreateNotification(c.Request.Context(),
			user.ID, user.Role, "Account Status Updated", message,
			domain.NotificationStatusChange,
			map[string]any{"active": active})
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.userRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var response []UserResponse
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}

	c.JSON(http.StatusOK, response)
}
