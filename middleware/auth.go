package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

const (
	TOKEN_KEY = "authToken"
	USER_KEY  = "user"
)

type AuthConfig struct {
	// SessionNotRequired lets the request through without a verified token.
	// The user helpers return nil for such requests.
	SessionNotRequired bool
	// AccountNotRequired lets a verified token through even when no account
	// row exists yet (account creation itself needs this)
	AccountNotRequired bool
}

// GenAuth verifies the Bearer token against firebase and loads the matching
// account row into the request context.
func GenAuth(userDB appDb.UserDatabase, authClient *auth.Client, config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorizationHeader := c.GetHeader("Authorization")
		if authorizationHeader == "" {
			if config.SessionNotRequired {
				return
			}
			abortUnauthorized(c, "no authorization header")
			return
		}
		if !strings.HasPrefix(authorizationHeader, "Bearer ") || len(authorizationHeader) < 8 {
			abortUnauthorized(c, "incorrectly formatted authorization header")
			return
		}

		token, err := authClient.VerifyIDToken(c.Request.Context(), authorizationHeader[7:])
		if err != nil {
			if config.SessionNotRequired {
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(TOKEN_KEY, token)

		user, err := userDB.GetUser(c.Request.Context(), token.UID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "database error",
			})
			c.Abort()
			return
		}
		if user == nil {
			if config.AccountNotRequired || config.SessionNotRequired {
				return
			}
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "must have an account",
			})
			c.Abort()
			return
		}
		c.Set(USER_KEY, user)
	}
}

// RequireAccount rejects requests that made it through a SessionNotRequired
// auth without an account row.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserMaybe(c) == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "must have an account",
			})
			c.Abort()
		}
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}

func MustGetToken(c *gin.Context) *auth.Token {
	token, _ := c.Get(TOKEN_KEY)
	return token.(*auth.Token)
}

func MustGetUser(c *gin.Context) *model.User {
	user, _ := c.Get(USER_KEY)
	return user.(*model.User)
}

// GetUserMaybe returns nil when the request carries no account.
func GetUserMaybe(c *gin.Context) *model.User {
	user, ok := c.Get(USER_KEY)
	if !ok {
		return nil
	}
	return user.(*model.User)
}

// GetUserIdMaybe returns "" when the request carries no account.
func GetUserIdMaybe(c *gin.Context) string {
	user := GetUserMaybe(c)
	if user == nil {
		return ""
	}
	return user.Id
}
