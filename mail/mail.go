package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// OtpMail is the job published for every issued passcode.
type OtpMail struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Publisher hands mail jobs to the delivery pipeline.
type Publisher interface {
	PublishOtp(ctx context.Context, mail OtpMail) error
}

// Sender delivers a rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, message []byte) error
}

func BuildOtpMessage(from string, mail OtpMail, now time.Time) []byte {
	minutes := int(mail.ExpiresAt.Sub(now).Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", mail.Email)
	b.WriteString("Subject: Your verification code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is %s.\r\n", mail.Code)
	fmt.Fprintf(&b, "It expires in %d minute(s).\r\n", minutes)
	b.WriteString("If you did not request it, ignore this email.\r\n")
	return b.Bytes()
}
