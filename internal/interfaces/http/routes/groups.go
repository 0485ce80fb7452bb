// Package routes registers the API endpoints per resource.
package routes

import "github.com/gin-gonic/gin"

// Groups are the three access tiers every resource registers into. User
// routes require a caller identity; admin routes require the admin role.
type Groups struct {
	Public *gin.RouterGroup
	User   *gin.RouterGroup
	Admin  *gin.RouterGroup
}
