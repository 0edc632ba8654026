package mail

import (
	"context"

	"messenger-api/config/logger"
)

// LogPublisher writes codes to the trace log instead of mailing them.
// Only meant for local development without a broker.
type LogPublisher struct {
	Log *logger.AppLogger
}

func (p *LogPublisher) PublishOtp(ctx context.Context, mail OtpMail) error {
	p.Log.Http.Trace.Trace().
		Str("email", mail.Email).
		Str("code", mail.Code).
		Time("expiresAt", mail.ExpiresAt).
		Msg("OTP mail (no broker configured)")
	return nil
}
