package authmodule

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
)

const contextUserKey = "shaflix.user"

// RequireAuth verifies the bearer credential and attaches the resolved local
// user to the request context. Requests without a valid credential are
// rejected before any store access.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		verifier := GetVerifier()
		if verifier == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Authentication is not configured",
			})
			return
		}

		tokenStr, err := BearerFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing bearer credential",
			})
			return
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid bearer credential",
			})
			return
		}

		user, err := resolveUser(database.GetDB(), claims)
		if err != nil {
			logger.Error("Failed to resolve user for subject %s: %v", claims.Subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to resolve user",
				"details": err.Error(),
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the resolved user when a valid credential is
// present, but lets unauthenticated requests through. Handlers behind it
// decide per resource what anonymous callers may see.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		verifier := GetVerifier()
		if verifier == nil {
			c.Next()
			return
		}

		tokenStr, err := BearerFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		if user, err := resolveUser(database.GetDB(), claims); err == nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by RequireAuth.
func CurrentUser(c *gin.Context) (*database.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*database.User)
	return user, ok
}

// resolveUser looks up the local user row for the identity-provider subject,
// creating it lazily on first authenticated request.
func resolveUser(db *gorm.DB, claims *Claims) (*database.User, error) {
	var user database.User
	err := db.Where("auth_subject = ?", claims.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = database.User{
		AuthSubject: claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Username:    usernameFromClaims(claims),
		AvatarURL:   claims.AvatarURL,
	}

	if err := db.Create(&user).Error; err != nil {
		// A concurrent first request may have created the row already
		if lookupErr := db.Where("auth_subject = ?", claims.Subject).First(&user).Error; lookupErr == nil {
			return &user, nil
		}
		return nil, err
	}

	// Stats seeding happens in the stats module, subscribed to this event
	if bus := events.GetGlobalEventBus(); bus != nil {
		event := events.NewUserEvent(events.EventUserCreated, user.ID, "User Created",
			fmt.Sprintf("User %s created from identity provider claims", user.Username))
		event.Data["user_id"] = user.ID
		bus.PublishAsync(event)
	}

	logger.Info("Created user %d for identity subject %s", user.ID, claims.Subject)
	return &user, nil
}

// usernameFromClaims derives an initial username from the email local part,
// suffixed with the subject when the plain form is unavailable.
func usernameFromClaims(claims *Claims) string {
	base := claims.Email
	if at := strings.Index(base, "@"); at > 0 {
		base = base[:at]
	}
	if base == "" {
		base = "user"
	}
	return base + "-" + shortSubject(claims.Subject)
}

func shortSubject(subject string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, subject)
	if len(cleaned) > 8 {
		cleaned = cleaned[:8]
	}
	return strings.ToLower(cleaned)
}
