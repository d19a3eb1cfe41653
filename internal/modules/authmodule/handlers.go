package authmodule

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
)

// profileUpdateRequest is the mutable subset of the user profile
type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Username    *string `json:"username"`
	Handle      *string `json:"handle"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// getProfile returns the authenticated user's profile
func (m *Module) getProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// updateProfile applies a partial patch to the authenticated user's profile
func (m *Module) updateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username cannot be empty"})
			return
		}
		updates["username"] = username
	}
	if req.Handle != nil {
		updates["handle"] = *req.Handle
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No profile fields to update"})
		return
	}

	if err := m.db.Model(user).Updates(updates).Error; err != nil {
		// Username carries a unique index; treat conflicts as client errors
		if req.Username != nil && database.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update profile",
			"details": err.Error(),
		})
		return
	}

	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(events.EventUserProfileUpdated, user.ID, "Profile Updated", "User profile fields changed")
		bus.PublishAsync(event)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"message": "Profile updated successfully",
	})
}
