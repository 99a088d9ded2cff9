package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alovak/cardflow-checkout/checkout/webhook"
	"github.com/alovak/cardflow-checkout/receiver/models"
	"github.com/google/uuid"
)

const releaseTimeout = 2 * time.Second

// NotificationStore is the storage the service needs. *Repository implements it.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, pspReference string) ([]*models.Notification, error)
	Ping(ctx context.Context) error
}

type Service struct {
	store  NotificationStore
	dedupe Deduper
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger, store NotificationStore, dedupe Deduper) *Service {
	if dedupe == nil {
		dedupe = NopDeduper{}
	}
	return &Service{
		store:  store,
		dedupe: dedupe,
		logger: logger,
		now:    time.Now,
	}
}

// Ingest stores every item of a decoded delivery. Redeliveries of an item
// already stored are counted as duplicates, not errors.
func (s *Service) Ingest(ctx context.Context, w webhook.Webhook) (models.IngestResult, error) {
	var result models.IngestResult
	receivedAt := s.now().UTC()

	for i, item := range w.NotificationItems {
		n := toNotification(item, w.IsLive(), receivedAt)

		stored, err := s.storeOne(ctx, n)
		if err != nil {
			return result, fmt.Errorf("storing notification item %d: %w", i, err)
		}
		if !stored {
			result.Duplicates++
			s.logger.Info("duplicate notification", slog.String("event_code", n.EventCode), slog.String("psp_reference", n.PSPReference))
			continue
		}
		result.Stored++
		s.logger.Info("notification stored", slog.String("id", n.ID), slog.String("event_code", n.EventCode), slog.String("psp_reference", n.PSPReference))
	}
	return result, nil
}

// storeOne stores a single notification and reports false for a redelivery.
func (s *Service) storeOne(ctx context.Context, n *models.Notification) (bool, error) {
	key := n.DedupeKey()
	if key != "" {
		claimed, err := s.dedupe.Claim(ctx, key)
		if err != nil {
			// fall back to the unique index
			s.logger.Error("claiming dedupe key", slog.String("key", key), slog.Any("err", err))
			claimed = true
		}
		if !claimed {
			return false, nil
		}
	}

	err := s.store.CreateNotification(ctx, n)
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	if err != nil {
		if key != "" {
			// the delivery context may already be done; the claim must still go
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if rerr := s.dedupe.Release(releaseCtx, key); rerr != nil {
				s.logger.Error("releasing dedupe key", slog.String("key", key), slog.Any("err", rerr))
			}
		}
		return false, err
	}
	return true, nil
}

func (s *Service) ListNotifications(ctx context.Context, pspReference string) ([]*models.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, pspReference)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func toNotification(item webhook.Item, live bool, receivedAt time.Time) *models.Notification {
	n := &models.Notification{
		ID:         uuid.New().String(),
		EventCode:  string(item.EventCode()),
		Live:       live,
		ReceivedAt: receivedAt,
	}
	if a, ok := item.(webhook.Authorisation); ok {
		success := a.Succeeded()
		amount := a.Amount
		n.PSPReference = a.PSPReference
		n.MerchantReference = a.MerchantReference
		n.MerchantAccount = a.MerchantAccountCode
		n.Success = &success
		n.Amount = &amount
		n.EventDate = a.EventDate
	}
	return n
}
