package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxCodigoTrabajador = "codigo_trabajador"
	ctxRoles            = "roles"
)

// Claims are the token claims issued by the corporate auth service. This
// engine only validates them; it never issues tokens.
type Claims struct {
	CodigoTrabajador string   `json:"codigo_trabajador"`
	Roles            []string `json:"roles"`
	jwt.RegisteredClaims
}

// authMiddleware validates the bearer token and stores the acting worker's
// code and roles in the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}
		if claims.CodigoTrabajador == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "token missing codigo_trabajador",
			})
			return
		}

		c.Set(ctxCodigoTrabajador, claims.CodigoTrabajador)
		c.Set(ctxRoles, claims.Roles)
		c.Next()
	}
}

// requireAdmin allows only users holding one of the configured admin roles.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get(ctxRoles)
		userRoles, _ := roles.([]string)

		for _, role := range userRoles {
			for _, admin := range s.adminRoles {
				if role == admin {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, Response{
			Success: false,
			Error:   "admin role required",
		})
	}
}

// actingUser returns the authenticated worker code from the context.
func actingUser(c *gin.Context) string {
	codigo, _ := c.Get(ctxCodigoTrabajador)
	s, _ := codigo.(string)
	return s
}
