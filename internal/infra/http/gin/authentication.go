package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"parkshare/internal/app/services/auth"
	domainauth "parkshare/internal/domain/auth"
	domainuser "parkshare/internal/domain/user"
)

const principalContextKey = "parkshare.principal"

type principal struct {
	Actor domainuser.Actor
	Token string
}

type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

// Handle resolves a bearer token into an actor and stashes it on the request
// context. Anonymous requests pass through; protected handlers reject them.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	actor, err := m.Service.ResolveActor(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{Actor: actor, Token: token})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requireActor aborts with 401 when no authenticated actor is present, and
// with 403 when a role is demanded that the actor does not carry. Admins pass
// every role gate.
func requireActor(c *gin.Context, role domainuser.Role) (domainuser.Actor, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return domainuser.Actor{}, false
	}
	if role != "" && p.Actor.Role != role && p.Actor.Role != domainuser.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return domainuser.Actor{}, false
	}
	return p.Actor, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
