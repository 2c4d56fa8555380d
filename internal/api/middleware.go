package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const userIDKey = "user_id"

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.config.Security.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token claims"})
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return c.Status(401).JSON(fiber.Map{"error": "token missing subject"})
		}

		c.Locals(userIDKey, sub)
		return c.Next()
	}
}

// currentUserID reads the authenticated user set by authMiddleware
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func (s *Server) requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

func (s *Server) rateLimitMiddleware() fiber.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(s.config.RateLimit.RequestsPerSecond), s.config.RateLimit.Burst)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			s.metrics.RecordRequestBlocked()
			return c.Status(429).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}

func (s *Server) metricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		s.metrics.RecordRequest(err == nil && c.Response().StatusCode() < 500)
		s.metrics.RecordEndpointRequest(c.Route().Path)
		s.metrics.RecordResponseTime(time.Since(start))
		return err
	}
}
