package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"messenger-api/config/common"
	"messenger-api/entity"
)

func newTestJWT(t *testing.T, secret string, ttl string) *JWT {
	t.Helper()
	v := viper.New()
	v.Set("JWT_SECRET", secret)
	v.Set("JWT_TTL", ttl)
	j, err := NewJWT(common.NewConfig(v))
	require.NoError(t, err)
	return j
}

const (
	testSecret  = "0123456789abcdef0123456789abcdef"
	otherSecret = "fedcba9876543210fedcba9876543210"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	j := newTestJWT(t, testSecret, "1h")
	user := &entity.User{BaseEntity: entity.BaseEntity{ID: "user-1"}, Email: "a@x.com"}

	token, err := j.GenerateToken(user)
	require.NoError(t, err)

	principal, err := j.PrincipalFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "user-1", Email: "a@x.com"}, principal)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestJWT(t, testSecret, "1h")
	other := newTestJWT(t, otherSecret, "1h")

	token, err := issuer.GenerateToken(&entity.User{BaseEntity: entity.BaseEntity{ID: "user-1"}})
	require.NoError(t, err)

	_, err = other.PrincipalFromToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	j := newTestJWT(t, testSecret, "-1m")

	token, err := j.GenerateToken(&entity.User{BaseEntity: entity.BaseEntity{ID: "user-1"}})
	require.NoError(t, err)

	_, err = j.VerifyJwtToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	j := newTestJWT(t, testSecret, "1h")
	claims := jwt.MapClaims{
		"user_id": "user-1",
		"iss":     "messenger-api",
		"aud":     "messenger-api",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = j.VerifyJwtToken(token)
	assert.Error(t, err)
}

func TestPrincipalFromClaimsRequiresUserID(t *testing.T) {
	j := newTestJWT(t, testSecret, "1h")
	_, err := j.PrincipalFromClaims(jwt.MapClaims{"iss": "messenger-api", "aud": "messenger-api"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = j.PrincipalFromClaims(jwt.MapClaims{"iss": "someone-else", "aud": "messenger-api", "user_id": "u"})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestNewJWTRejectsWeakSecret(t *testing.T) {
	for _, secret := range []string{"", "short-secret", testSecret[:MinSecretLength-1]} {
		v := viper.New()
		v.Set("JWT_SECRET", secret)
		_, err := NewJWT(common.NewConfig(v))
		assert.ErrorIs(t, err, ErrWeakSecret, "secret %q", secret)
	}
}

func TestEmptySecretTokenIsRejected(t *testing.T) {
	j := newTestJWT(t, testSecret, "1h")
	claims := jwt.MapClaims{
		"user_id": "victim",
		"iss":     "messenger-api",
		"aud":     "messenger-api",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = j.PrincipalFromToken(token)
	assert.Error(t, err)
}
