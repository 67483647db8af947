package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// CreateNotificationRequest is the HTTP request body for a direct
// notification.
type CreateNotificationRequest struct {
	UserID   string         `json:"user_id"`
	Role     string         `json:"role"` // rider, driver, admin
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Type     string         `json:"type,omitempty"` // defaults to SYSTEM
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AnnouncementRequest is the HTTP request body for an admin broadcast.
type AnnouncementRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Audience string `json:"audience"` // all, riders, drivers
	AdminID  string `json:"admin_id,omitempty"`
}

// NotificationResponse is the HTTP response for notification data.
type NotificationResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Role      string         `json:"role"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Role:      string(n.Role),
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create handles POST /v1/notifications
//
// Delivery is fire-and-forget: the response is 201 even when persistence
// failed, matching how internal producers treat sends. A failed persist
// yields an empty body instead of a record.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.UserID == "" {
		respondError(c, service.ErrInvalidUserID)
		return
	}
	if req.Title == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title and message are required"})
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

	typ := domain.NotificationType(req.Type)
	if typ == "" {
		typ = domain.NotificationSystem
	}

	n := h.notificationService.CreateNotification(c.Request.Context(),
		req.UserID, role, req.Title, req.Message, typ, req.Metadata)
	if n == nil {
		respondJSON(c, http.StatusCreated, gin.H{})
		return
	}

	respondJSON(c, http.StatusCreated, toNotificationResponse(n))
}

// ListForUser handles GET /v1/users/:id/notifications
func (h *NotificationHandler) ListForUser(c *gin.Context) {
	notifications, err := h.notificationService.ListUserNotifications(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var response []NotificationResponse
	for _, n := range notifications {
		response = append(response, toNotificationResponse(n))
	}

	c.JSON(http.StatusOK, response)
}

// Announce handles POST /v1/announcements
func (h *NotificationHandler) Announce(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	count, err := h.notificationService.SendAdminAnnouncement(c.Request.Context(), service.SendAnnouncementRequest{
		Title:    req.Title,
		Message:  req.Message,
		Audience: domain.Audience(req.Audience),
		AdminID:  req.AdminID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"count": count})
}
