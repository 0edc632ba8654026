package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"messenger-api/exception"
)

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	for _, bad := range []string{"", "   ", "not-an-email", "Alice <alice@example.com>"} {
		_, err := NormalizeEmail(bad)
		assert.True(t, exception.Is(err, exception.KindValidation), bad)
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***e@x.com", MaskEmail("alice@x.com"))
	assert.Equal(t, "a***@x.com", MaskEmail("al@x.com"))
	assert.Equal(t, "broken", MaskEmail("broken"))
}
