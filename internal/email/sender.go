package email

import "context"

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

// DeliveryObserver counts notification outcomes by kind ("scheduled", "cancelled").
type DeliveryObserver interface {
	EmailSent(kind string)
	EmailFailed(kind string)
}

type nopDeliveryObserver struct{}

func (nopDeliveryObserver) EmailSent(string)   {}
func (nopDeliveryObserver) EmailFailed(string) {}
