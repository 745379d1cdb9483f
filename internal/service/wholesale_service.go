package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/mailer"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// WholesaleService handles wholesale account applications and their admin
// review. Until approval the account buys at retail prices.
type WholesaleService struct {
	customers repository.CustomerRepository
	mail      Notifier
	logger    *zap.Logger
}

// NewWholesaleService creates a wholesale service
func NewWholesaleService(customers repository.CustomerRepository, mail Notifier, logger *zap.Logger) *WholesaleService {
	return &WholesaleService{
		customers: customers,
		mail:      mail,
		logger:    logger,
	}
}

// Apply puts a customer's wholesale application in the review queue.
// Re-applying while pending or approved is a conflict.
func (s *WholesaleService) Apply(ctx context.Context, customerID uuid.UUID) error {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	switch customer.Wholesale.Status {
	case domain.WholesaleStatusPending:
		return &errors.ErrConflict{Message: "wholesale application already pending"}
	case domain.WholesaleStatusApproved:
		return &errors.ErrConflict{Message: "account is already wholesale"}
	}

	if err := s.customers.UpdateWholesaleStatus(ctx, customerID, domain.WholesaleStatusPending, 0); err != nil {
		return err
	}

	s.logger.Info("Wholesale application received", zap.String("customer_id", customerID.String()))
	return nil
}

// Approve grants wholesale pricing, optionally with a discount tier, and
// notifies the customer.
func (s *WholesaleService) Approve(ctx context.Context, customerID uuid.UUID, discountTier int) error {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.customers.UpdateWholesaleStatus(ctx, customerID, domain.WholesaleStatusApproved, discountTier); err != nil {
		return err
	}

	s.mail.Dispatch(mailer.EventWholesaleApproved, mailer.Payload{
		To:           customer.Email,
		CustomerName: customer.FullName,
	})
	s.logger.Info("Wholesale application approved",
		zap.String("customer_id", customerID.String()),
		zap.Int("discount_tier", discountTier))
	return nil
}

// Reject declines a wholesale application and notifies the customer with
// the given reason.
func (s *WholesaleService) Reject(ctx context.Context, customerID uuid.UUID, reason string) error {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.customers.UpdateWholesaleStatus(ctx, customerID, domain.WholesaleStatusRejected, 0); err != nil {
		return err
	}

	s.mail.Dispatch(mailer.EventWholesaleRejected, mailer.Payload{
		To:           customer.Email,
		CustomerName: customer.FullName,
		Reason:       reason,
	})
	s.logger.Info("Wholesale application rejected", zap.String("customer_id", customerID.String()))
	return nil
}

// ListPending returns applications awaiting review
func (s *WholesaleService) ListPending(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	return s.customers.ListByWholesaleStatus(ctx, domain.WholesaleStatusPending, limit, offset)
}
