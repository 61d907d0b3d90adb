package http

import "github.com/gin-gonic/gin"

// Todas las respuestas usan el sobre {success, message, data}; los fallos de
// dominio se aplanan a {success:false, message} sin filtrar internals.

func respond(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondErr(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
