package receiver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"

	checkout "github.com/alovak/cardflow-checkout/checkout/models"
	"github.com/alovak/cardflow-checkout/receiver/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = fmt.Errorf("not found")

var ErrConflict = fmt.Errorf("conflict")

// Schema creates the notifications table. The partial unique index rejects
// a second copy of the same event for the same payment.
const Schema = `
CREATE SCHEMA IF NOT EXISTS checkout;
CREATE TABLE IF NOT EXISTS checkout.notifications (
    notification_id    uuid PRIMARY KEY,
    event_code         text NOT NULL,
    psp_reference      text NOT NULL DEFAULT '',
    merchant_reference text NOT NULL DEFAULT '',
    merchant_account   text NOT NULL DEFAULT '',
    success            boolean NULL,
    amount_value       bigint NULL,
    amount_currency    text NULL,
    event_date         text NOT NULL DEFAULT '',
    live               boolean NOT NULL,
    received_at        timestamptz NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS notifications_event_psp_uniq
    ON checkout.notifications (event_code, psp_reference) WHERE psp_reference <> '';
`

// Repository stores notifications in Postgres, or in memory when created
// with NewRepository.
type Repository struct {
	mu            sync.RWMutex
	notifications []*models.Notification
	keys          map[string]struct{}

	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		notifications: make([]*models.Notification, 0),
		keys:          make(map[string]struct{}),
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate applies Schema. It is a no-op for the memory backend.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if key := n.DedupeKey(); key != "" {
			if _, ok := r.keys[key]; ok {
				return fmt.Errorf("notification %s exists: %w", key, ErrConflict)
			}
			r.keys[key] = struct{}{}
		}
		r.notifications = append(r.notifications, n)
		return nil
	}

	var value sql.NullInt64
	var currency sql.NullString
	if n.Amount != nil {
		if n.Amount.Value > math.MaxInt64 {
			return fmt.Errorf("amount %d does not fit the amount_value column", n.Amount.Value)
		}
		value = sql.NullInt64{Int64: int64(n.Amount.Value), Valid: true}
		currency = sql.NullString{String: string(n.Amount.Currency), Valid: true}
	}
	var success sql.NullBool
	if n.Success != nil {
		success = sql.NullBool{Bool: *n.Success, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO checkout.notifications(notification_id, event_code, psp_reference, merchant_reference,
            merchant_account, success, amount_value, amount_currency, event_date, live, received_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `, n.ID, n.EventCode, n.PSPReference, n.MerchantReference, n.MerchantAccount,
		success, value, currency, n.EventDate, n.Live, n.ReceivedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// ListNotifications returns the notifications of a payment, oldest first.
func (r *Repository) ListNotifications(ctx context.Context, pspReference string) ([]*models.Notification, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		var out []*models.Notification
		for _, n := range r.notifications {
			if n.PSPReference == pspReference {
				out = append(out, n)
			}
		}
		if len(out) == 0 {
			return nil, ErrNotFound
		}
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT notification_id, event_code, psp_reference, merchant_reference, merchant_account,
            success, amount_value, amount_currency, event_date, live, received_at
        FROM checkout.notifications WHERE psp_reference=$1 ORDER BY received_at, notification_id
    `, pspReference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var success sql.NullBool
		var value sql.NullInt64
		var currency sql.NullString
		if err := rows.Scan(&n.ID, &n.EventCode, &n.PSPReference, &n.MerchantReference, &n.MerchantAccount,
			&success, &value, &currency, &n.EventDate, &n.Live, &n.ReceivedAt); err != nil {
			return nil, err
		}
		if success.Valid {
			n.Success = &success.Bool
		}
		if value.Valid && currency.Valid {
			c, err := checkout.ParseCurrency(currency.String)
			if err != nil {
				return nil, fmt.Errorf("notification %s: %w", n.ID, err)
			}
			n.Amount = &checkout.Amount{Value: uint64(value.Int64), Currency: c}
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Ping returns DB readiness
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
