package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrLedgerWrite means the code was never persisted; nothing was sent.
	ErrLedgerWrite = errors.New("otp ledger write failed")
	// ErrDelivery means the code was persisted but the notification failed.
	// The stored code stays valid until it expires or is superseded.
	ErrDelivery = errors.New("otp delivery failed")
)

// Ledger persists an outstanding code keyed by email. Upsert overwrites any
// prior code for the same email, so at most one code is live per address.
type Ledger interface {
	Upsert(ctx context.Context, email, code string, ttl time.Duration) error
}

// Notifier delivers a message to an email address. Implemented by the SMTP
// gateway in production and by fakes in tests.
type Notifier interface {
	Send(to, subject, body string) error
}

// Message renders the subject and body for a freshly issued code.
type Message func(code string, ttl time.Duration) (subject, body string)

// Issuer generates codes, records them in a ledger, and notifies the
// recipient. One Issuer is wired per flow (signup, password reset), each with
// its own ledger and message template.
type Issuer struct {
	ledger   Ledger
	notifier Notifier
	message  Message
	ttl      time.Duration
	log      *zap.Logger
}

func NewIssuer(ledger Ledger, notifier Notifier, message Message, ttl time.Duration, log *zap.Logger) *Issuer {
	return &Issuer{ledger: ledger, notifier: notifier, message: message, ttl: ttl, log: log}
}

// TTL reports the validity window applied to issued codes.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue writes a fresh code for email and sends it. A ledger failure aborts
// before anything is sent. A delivery failure after a successful write is
// reported as ErrDelivery but the write is not rolled back.
func (i *Issuer) Issue(ctx context.Context, email string) (string, error) {
	code, err := NewCode(CodeDigits)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}

	if err := i.ledger.Upsert(ctx, email, code, i.ttl); err != nil {
		i.log.Error("otp ledger write failed",
			zap.String("op", "otp.issue"),
			zap.String("email", email),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	subject, body := i.message(code, i.ttl)
	if err := i.notifier.Send(email, subject, body); err != nil {
		i.log.Error("otp delivery failed",
			zap.String("op", "otp.issue"),
			zap.String("email", email),
			zap.Error(err))
		return code, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	return code, nil
}
