package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Dispatcher sends event emails fire-and-forget: dispatch runs in a
// goroutine, failures are logged and never surfaced, nothing is retried.
// An order's fate is decided long before its email goes out.
type Dispatcher struct {
	mailer     Mailer
	adminEmail string
	logger     *zap.Logger
}

// NewDispatcher creates an event email dispatcher
func NewDispatcher(mailer Mailer, adminEmail string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Dispatch sends the email for an event in the background.
// Safe to call with an empty recipient (guest without email): it logs and
// returns.
func (d *Dispatcher) Dispatch(event string, payload Payload) {
	to := payload.To
	if event == EventNewOrderAdmin {
		to = d.adminEmail
	}
	if to == "" {
		d.logger.Debug("Skipping email with no recipient", zap.String("event", event))
		return
	}

	subject, body := render(event, payload)
	if subject == "" {
		d.logger.Warn("Unknown email event", zap.String("event", event))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := d.mailer.Send(ctx, to, subject, body); err != nil {
			d.logger.Warn("Failed to send event email",
				zap.String("event", event),
				zap.String("order_number", payload.OrderNumber),
				zap.Error(err))
			return
		}
		d.logger.Info("Event email sent",
			zap.String("event", event),
			zap.String("order_number", payload.OrderNumber))
	}()
}

// render builds subject and body per event. Templating is deliberately
// plain; the storefront owns the rich templates.
func render(event string, p Payload) (subject, body string) {
	dinars := float64(p.Total) / 1000

	switch event {
	case EventOrderConfirmed:
		return fmt.Sprintf("Commande %s confirmée", p.OrderNumber),
			fmt.Sprintf("Bonjour %s,\n\nVotre commande %s (%.3f DT) a bien été enregistrée.",
				p.CustomerName, p.OrderNumber, dinars)
	case EventOrderShipped:
		return fmt.Sprintf("Commande %s expédiée", p.OrderNumber),
			fmt.Sprintf("Bonjour %s,\n\nVotre commande %s est en route.",
				p.CustomerName, p.OrderNumber)
	case EventOrderCancelled:
		return fmt.Sprintf("Commande %s annulée", p.OrderNumber),
			fmt.Sprintf("Bonjour %s,\n\nVotre commande %s a été annulée.\n%s",
				p.CustomerName, p.OrderNumber, p.Reason)
	case EventNewOrderAdmin:
		return fmt.Sprintf("Nouvelle commande %s", p.OrderNumber),
			fmt.Sprintf("Commande %s de %s, total %.3f DT.",
				p.OrderNumber, p.CustomerName, dinars)
	case EventWholesaleApproved:
		return "Compte grossiste approuvé",
			fmt.Sprintf("Bonjour %s,\n\nVotre compte grossiste a été approuvé.", p.CustomerName)
	case EventWholesaleRejected:
		return "Demande de compte grossiste",
			fmt.Sprintf("Bonjour %s,\n\nVotre demande de compte grossiste n'a pas été retenue.\n%s",
				p.CustomerName, p.Reason)
	default:
		return "", ""
	}
}
