package mailer

import (
	"context"
	"log"
)

// Mailer is the outbound email collaborator. Receipt delivery is
// best-effort; callers log failures and never fail the purchase over them.
type Mailer interface {
	SendReceipt(ctx context.Context, email, buyOrder string, productIDs []string, amount int64) error
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs. Stands in until a real
// delivery provider is wired.
func NewLogMailer() Mailer {
	return &logMailer{}
}

func (m *logMailer) SendReceipt(ctx context.Context, email, buyOrder string, productIDs []string, amount int64) error {
	log.Printf("receipt to=%s buy_order=%s products=%v amount=%d", email, buyOrder, productIDs, amount)
	return nil
}
