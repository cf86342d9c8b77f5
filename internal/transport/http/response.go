package httptransport

import "github.com/gin-gonic/gin"

// RespondDetail writes an error payload carrying a plain-text detail
// message, matching what relay clients already parse.
func RespondDetail(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, gin.H{"detail": detail})
}
