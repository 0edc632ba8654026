package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"messenger-api/config/common"
	"messenger-api/entity"
)

// MinSecretLength is the shortest HS512 key the server accepts.
const MinSecretLength = 32

var (
	ErrInvalidClaims = errors.New("token claims are invalid")
	ErrWeakSecret    = fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
)

type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewJWT(config *common.Config) (*JWT, error) {
	secret := config.GetJwtConfig()
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	issuer, ttl := config.GetJwtClaimsConfig()
	return &JWT{secret: secret, issuer: issuer, ttl: ttl}, nil
}

func (j *JWT) SigningKey() []byte {
	return j.secret
}

func (j *JWT) GenerateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"aud":     j.issuer,
		"iss":     j.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(j.secret)
}

func (j *JWT) VerifyJwtToken(token string) (jwt.MapClaims, error) {
	tokenParse, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := tokenParse.Claims.(jwt.MapClaims)
	if !ok || !tokenParse.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// PrincipalFromToken verifies the raw token and extracts the identity.
func (j *JWT) PrincipalFromToken(token string) (Principal, error) {
	claims, err := j.VerifyJwtToken(token)
	if err != nil {
		return Principal{}, err
	}
	return j.PrincipalFromClaims(claims)
}

// PrincipalFromClaims is used when signature and expiry were already
// checked upstream; issuer and audience are still enforced here.
func (j *JWT) PrincipalFromClaims(claims jwt.MapClaims) (Principal, error) {
	issuer, err := claims.GetIssuer()
	if err != nil || issuer != j.issuer {
		return Principal{}, ErrInvalidClaims
	}
	audience, err := claims.GetAudience()
	if err != nil || !contains(audience, j.issuer) {
		return Principal{}, ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Principal{}, ErrInvalidClaims
	}
	email, _ := claims["email"].(string)
	return Principal{UserID: userID, Email: email}, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
