package server

import (
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LoginPrompt handles GET /auth/login. Protected pages redirect here, so it
// has to answer something useful to anonymous callers.
func (s *Server) LoginPrompt(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Authentication required",
		"login":   "/auth/login",
		"signup":  "/auth/signup",
	})
}

// Signup handles POST /auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("User already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		if models.CodeOf(err) == models.CodeValidation {
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout. The token's jti goes on the Redis
// blacklist until its natural expiry; without Redis, logout is client-side
// only.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims := s.tokenClaims(c)
	if claims != nil && s.redis != nil {
		jti, _ := claims["jti"].(string)
		exp, expOk := claims["exp"].(float64)
		if jti != "" && expOk {
			ttl := time.Until(time.Unix(int64(exp), 0))
			if ttl > 0 {
				if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
					middleware.RedisErrors.WithLabelValues("blacklist_set").Inc()
					middleware.Logger.WarnContext(c.UserContext(), "token blacklist failed",
						"error", err.Error())
				}
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// DeleteMyAccount handles DELETE /auth/me. The database cascades take the
// user's posts, comments, and follow edges with the row.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userRepo.Delete(c.Context(), userID); err != nil {
		if models.CodeOf(err) == models.CodeNotFound {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Their posts may have been on the cached front page.
	s.feedService.ClearCache()

	return c.SendStatus(fiber.StatusNoContent)
}

// tokenClaims parses the caller's token without enforcing validity windows,
// for logout bookkeeping.
func (s *Server) tokenClaims(c *fiber.Ctx) jwt.MapClaims {
	tokenString := ""
	if authHeader := c.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	}
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}
	if tokenString == "" {
		return nil
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}

// generateToken creates a JWT token for the given user
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenLifetime).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID so individual tokens can be revoked
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
