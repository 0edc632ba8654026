package middleware

import (
	"crypto/subtle"
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"messenger-api/config/common"
	"messenger-api/exception"
	"messenger-api/repository"
	"messenger-api/security"
)

const (
	tokenKey     = "jwt"
	principalKey = "principal"
)

type Middleware struct {
	*common.Config
	*security.JWT
	*gorm.DB
	Users *repository.UserRepository
	Log   *logrus.Logger

	jwtHandler fiber.Handler
}

func NewMiddleware(config *common.Config, jwtService *security.JWT, logger *logrus.Logger, db *gorm.DB, userRepository *repository.UserRepository) *Middleware {
	middleware := &Middleware{Config: config, JWT: jwtService, DB: db, Users: userRepository, Log: logger}
	middleware.jwtHandler = jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS512, Key: jwtService.SigningKey()},
		ContextKey: tokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Log.WithError(err).WithField("path", c.Path()).Warn("Failed to validate JWT")
			return exception.Unauthorized("Token is not valid")
		},
	})
	return middleware
}

func (middleware *Middleware) JWTProtected(c *fiber.Ctx) error {
	return middleware.jwtHandler(c)
}

// ExtractUserID runs after JWTProtected and turns the verified token into a
// Principal for the handlers. Tokens of deleted accounts are refused.
func (middleware *Middleware) ExtractUserID(c *fiber.Ctx) error {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return exception.Unauthorized("Token is not valid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return exception.Unauthorized("Token is not valid")
	}

	principal, err := middleware.JWT.PrincipalFromClaims(claims)
	if err != nil {
		middleware.Log.WithError(err).Warn("Failed to extract user ID from token")
		return exception.Unauthorized("Token is not valid")
	}

	exists, err := middleware.Users.ExistsById(c.UserContext(), middleware.DB, principal.UserID)
	if err != nil {
		return err
	}
	if !exists {
		middleware.Log.WithField("userId", principal.UserID).Warn("Token for unknown user")
		return exception.Unauthorized("User no longer exists")
	}

	middleware.Log.WithField("userId", principal.UserID).Trace("Principal resolved")
	c.Locals(principalKey, principal)
	return c.Next()
}

// OAuthClientSecret guards the server-to-server OAuth hand-off.
func (middleware *Middleware) OAuthClientSecret(c *fiber.Ctx) error {
	secret := middleware.Config.GetOAuthClientSecret()
	if secret == "" {
		return exception.Unavailable("OAuth sign-in is not configured", nil)
	}
	given := c.Get("X-Client-Secret")
	if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
		middleware.Log.WithField("ip", c.IP()).Warn("Rejected OAuth hand-off")
		return exception.Unauthorized("Invalid client secret")
	}
	return c.Next()
}

var errNoPrincipal = errors.New("no principal on request")

func GetPrincipal(c *fiber.Ctx) (security.Principal, error) {
	principal, ok := c.Locals(principalKey).(security.Principal)
	if !ok || principal.UserID == "" {
		return security.Principal{}, &exception.Error{Kind: exception.KindAuth, Message: "Unauthorized", Err: errNoPrincipal}
	}
	return principal, nil
}
