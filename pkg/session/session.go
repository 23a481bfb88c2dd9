package session

import (
	"github.com/gin-gonic/gin"
)

const contextKey = "session_user"

// Get returns the user put on the context by the session middleware.
func Get(c *gin.Context) *User {
	user, exists := c.Get(contextKey)
	if !exists {
		return nil
	}

	u, _ := user.(*User)
	return u
}

// Set puts u on the context for the rest of the handler chain.
func Set(c *gin.Context, u *User) {
	c.Set(contextKey, u)
}
