package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/tubebrief/version"
)

// Version returns a handler that reports build version information.
func Version(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"build":   version.Get(),
		})
	}
}
