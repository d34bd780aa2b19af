package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"optionscope/apperrors"
	"optionscope/database"
	"optionscope/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * time.Minute

// contextUserKey is where the auth middleware stores the resolved user.
const contextUserKey = "current_user"

// AuthService handles registration, login, and token verification.
type AuthService struct {
	storage *database.Storage
	secret  []byte
	logger  *logrus.Logger
}

// NewAuthService creates a new auth service signing tokens with the given
// secret.
func NewAuthService(storage *database.Storage, secret string) *AuthService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &AuthService{
		storage: storage,
		secret:  []byte(secret),
		logger:  logger,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("credentials", "username and password are required")
	}

	existing, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidationError("username", "username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, HashedPassword: string(hash)}
	if err := s.storage.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.WithField("username", username).Info("Registered new user")
	return user, nil
}

// Login verifies the credentials and issues a signed token.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": user.Username,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// verifyToken parses a signed token and resolves its user.
func (s *AuthService) verifyToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	username, _ := claims["sub"].(string)
	if username == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// Middleware authenticates requests carrying a bearer token and stores the
// resolved user on the request context.
func (s *AuthService) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		user, err := s.verifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(apperrors.StatusCode(err), gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by the middleware, or
// nil if the request was not authenticated.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
