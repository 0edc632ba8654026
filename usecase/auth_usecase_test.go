package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"messenger-api/dto/req"
	"messenger-api/exception"
)

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestLoginThenVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "A@X.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", login.Email)

	code := f.Publisher.code("a@x.com")
	require.Len(t, code, 6)

	_, err = f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: wrongCode(code)})
	assert.True(t, exception.Is(err, exception.KindOtp))

	session, err := f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: code})
	require.NoError(t, err)
	assert.True(t, session.User.IsVerified)
	assert.Equal(t, "a@x.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	principal, err := f.JWT.PrincipalFromToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, principal.UserID)
}

func TestVerifyReplayFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
	require.NoError(t, err)
	code := f.Publisher.code("a@x.com")

	_, err = f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: code})
	require.NoError(t, err)

	_, err = f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: code})
	assert.True(t, exception.Is(err, exception.KindOtp))
}

func TestConcurrentVerifyIssuesOneSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
	require.NoError(t, err)
	code := f.Publisher.code("a@x.com")

	var wg sync.WaitGroup
	var sessions atomic.Int64
	start := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: code}); err == nil {
				sessions.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, sessions.Load())
}

func TestLoginReissueInvalidatesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
	require.NoError(t, err)
	first := f.Publisher.code("a@x.com")

	var second string
	for i := 0; i < 2 && (second == "" || second == first); i++ {
		_, err = f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
		require.NoError(t, err)
		second = f.Publisher.code("a@x.com")
	}
	if second == first {
		t.Skip("random codes collided")
	}

	_, err = f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: first})
	assert.True(t, exception.Is(err, exception.KindOtp))

	_, err = f.Auth.Verify(ctx, &req.VerifyRequest{Email: "a@x.com", Otp: second})
	assert.NoError(t, err)
}

func TestLoginIsRateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
		require.NoError(t, err)
	}
	_, err := f.Auth.Login(ctx, &req.LoginRequest{Email: "a@x.com"})
	assert.True(t, exception.Is(err, exception.KindTooManyRequests))
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.Auth.Login(context.Background(), &req.LoginRequest{Email: "not-an-email"})
	assert.Error(t, err)
	assert.Empty(t, f.Publisher.code("not-an-email"))
}

func TestOAuthSessionCreatesOnceAndMarksVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.Auth.OAuthSession(ctx, &req.OAuthRequest{Email: "b@x.com", Avatar: "https://img.test/b.png"})
	require.NoError(t, err)
	assert.True(t, first.User.IsVerified)
	assert.Equal(t, "https://img.test/b.png", first.User.Avatar)

	second, err := f.Auth.OAuthSession(ctx, &req.OAuthRequest{Email: "B@x.com"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}
