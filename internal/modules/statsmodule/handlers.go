package statsmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/modules/authmodule"
)

// getMyStats returns the authenticated user's stats row, recomputing it
// on the spot when absent
func (m *Module) getMyStats(c *gin.Context) {
	user, ok := authmodule.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var stats database.UserStats
	err := m.db.First(&stats, "user_id = ?", user.ID).Error
	if err == gorm.ErrRecordNotFound {
		recomputed, err := UpdateUserStats(m.db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to compute stats",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": recomputed})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve stats",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
