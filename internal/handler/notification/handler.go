package notification

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showrunner/notification-api/internal/middleware"
	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/service/notification"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
	"github.com/showrunner/notification-api/pkg/httputil"
)

// Service is what the handler needs from the notification core
type Service interface {
	List(ctx context.Context, filter *model.NotificationFilter) (*model.NotificationPage, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateScheduleNotifications(ctx context.Context, req notification.ScheduleRequest) (*notification.ScheduleResult, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("/user/:userId", h.ListForUser)
		notifications.GET("/user/:userId/unread-count", h.GetUnreadCount)
		notifications.PATCH("/user/:userId/read-all", auth.RequireUser("userId"), h.MarkAllRead)
		notifications.POST("/schedule", auth.Optional(), h.CreateScheduleNotifications)
		notifications.PATCH("/:notificationId/read", h.MarkRead)
		notifications.DELETE("/:notificationId", h.Delete)
	}
}

func (h *Handler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid user ID", err))
		return
	}

	projectID, err := optionalUUIDQuery(c, "projectId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, err := positiveIntQuery(c, "page")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	limit, err := positiveIntQuery(c, "limit")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := &model.NotificationFilter{
		RecipientID: userID,
		ProjectID:   projectID,
		UnreadOnly:  c.Query("unreadOnly") == "true",
		Page:        page,
		Limit:       limit,
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithList(c, result.Items, httputil.Pagination{
		Page:  result.Page,
		Pages: result.Pages,
		Total: result.Total,
		Limit: result.Limit,
	}, result.UnreadCount)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid notification ID", err))
		return
	}

	updated, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Notification marked as read", updated)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid user ID", err))
		return
	}

	projectID, err := optionalUUIDQuery(c, "projectId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	modified, err := h.service.MarkAllRead(c.Request.Context(), userID, projectID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Marked " + strconv.FormatInt(modified, 10) + " notifications as read",
		"modifiedCount": modified,
	})
}

func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid user ID", err))
		return
	}

	projectID, err := optionalUUIDQuery(c, "projectId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID, projectID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"unreadCount": count,
	})
}

type scheduleRequest struct {
	ItemID    string `json:"itemId" binding:"required"`
	ItemType  string `json:"itemType" binding:"required"`
	ProjectID string `json:"projectId" binding:"required"`
	SenderID  string `json:"senderId"`
}

func (h *Handler) CreateScheduleNotifications(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("itemId, itemType, and projectId are required", err))
		return
	}

	kind := model.ItemKind(req.ItemType)
	if !kind.Valid() {
		httputil.RespondWithError(c, apperrors.NewValidation("itemType must be 'scene' or 'task'", nil))
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid item ID", err))
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid project ID", err))
		return
	}

	senderID, err := resolveSender(c, req.SenderID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.CreateScheduleNotifications(c.Request.Context(), notification.ScheduleRequest{
		ItemID:    itemID,
		ItemType:  kind,
		ProjectID: projectID,
		SenderID:  senderID,
	})

	var partial *notification.PartialError
	if errors.As(err, &partial) {
		c.JSON(http.StatusMultiStatus, gin.H{
			"success": false,
			"message": partial.Error(),
			"error":   "partial_fanout",
			"data": gin.H{
				"notificationCount": len(result.Notifications),
				"failedCount":       len(partial.Failed),
				"itemTitle":         result.ItemTitle,
				"itemType":          result.ItemType,
			},
		})
		return
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	count := len(result.Notifications)
	httputil.RespondWithSuccess(c,
		"Schedule notification sent to "+strconv.Itoa(count)+" users",
		gin.H{
			"notificationCount": count,
			"itemTitle":         result.ItemTitle,
			"itemType":          result.ItemType,
		},
	)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid notification ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Notification deleted successfully", nil)
}

// resolveSender prefers the authenticated subject, then an explicit senderId
func resolveSender(c *gin.Context, explicit string) (uuid.UUID, error) {
	if subject := c.GetString(middleware.ContextUserID); subject != "" {
		id, err := uuid.Parse(subject)
		if err == nil {
			return id, nil
		}
	}
	if explicit != "" {
		id, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, apperrors.NewValidation("invalid sender ID", err)
		}
		return id, nil
	}
	return uuid.Nil, apperrors.NewValidation("senderId or an authenticated caller is required", nil)
}

// optionalUUIDQuery parses an optional UUID query parameter
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.NewValidation("invalid "+name, err)
	}
	return &id, nil
}

// positiveIntQuery parses an optional positive integer query parameter.
// Absent means "use the default"; present but non-positive is an error, not
// a silent clamp.
func positiveIntQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.NewValidation(name+" must be a positive integer", err)
	}
	return v, nil
}
