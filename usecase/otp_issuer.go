package usecase

import (
	"context"

	"messenger-api/config/logger"
	"messenger-api/exception"
	"messenger-api/mail"
	"messenger-api/security"
)

// OtpIssuer is the shared "issue a code and mail it" step used by login
// and by the email change flow.
type OtpIssuer struct {
	Store     *security.OtpStore
	Limiter   *security.RateLimiter
	Publisher mail.Publisher
	Log       *logger.AppLogger
}

func NewOtpIssuer(store *security.OtpStore, limiter *security.RateLimiter, publisher mail.Publisher, log *logger.AppLogger) *OtpIssuer {
	return &OtpIssuer{Store: store, Limiter: limiter, Publisher: publisher, Log: log}
}

// Issue expects an already normalized email.
func (o *OtpIssuer) Issue(ctx context.Context, email string) error {
	masked := security.MaskEmail(email)

	if o.Limiter != nil {
		allowed, err := o.Limiter.Allow(ctx, "otp:"+email)
		if err != nil {
			o.Log.Http.Error.Error().Err(err).Str("email", masked).Msg("OTP rate limiter unavailable")
			return exception.Unavailable("Verification is temporarily unavailable", err)
		}
		if !allowed {
			o.Log.Http.Warning.Warn().Str("email", masked).Msg("Too many OTP requests")
			return exception.TooManyRequests("Too many verification code requests, try again later")
		}
	}

	code, expireAt, err := o.Store.Issue(ctx, email)
	if err != nil {
		o.Log.Http.Error.Error().Err(err).Str("email", masked).Msg("Failed to store OTP")
		return err
	}

	if err := o.Publisher.PublishOtp(ctx, mail.OtpMail{Email: email, Code: code, ExpiresAt: expireAt}); err != nil {
		o.Log.Http.Error.Error().Err(err).Str("email", masked).Msg("Failed to publish OTP mail")
		return exception.Unavailable("Could not send the verification code", err)
	}

	o.Log.Http.Info.Info().Str("email", masked).Time("expireAt", expireAt).Msg("OTP issued")
	return nil
}

func (o *OtpIssuer) Verify(ctx context.Context, email, code string) error {
	if err := o.Store.Verify(ctx, email, code); err != nil {
		o.Log.Http.Warning.Warn().Err(err).Str("email", security.MaskEmail(email)).Msg("OTP verification failed")
		return err
	}
	return nil
}
