package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceDetailsMiddleware extracts the device metadata the conversion
// engine attaches to each booking context.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceCategory := c.GetHeader("X-Device-Category")
		deviceBrand := c.GetHeader("X-Device-Brand")
		if deviceCategory == "" || deviceBrand == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required device details: X-Device-Category and X-Device-Brand",
			})
			return
		}

		c.Set("deviceCategory", deviceCategory)
		c.Set("deviceBrand", deviceBrand)
		c.Set("deviceIP", getClientIP(c))
		c.Next()
	}
}
