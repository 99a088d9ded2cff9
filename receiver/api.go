package receiver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alovak/cardflow-checkout/checkout/webhook"
	"github.com/go-chi/chi/v5"
)

const maxWebhookBody = 1 << 20

// API is a HTTP API for the webhook receiver
type API struct {
	receiver *Service
	logger   *slog.Logger
}

func NewAPI(logger *slog.Logger, receiver *Service) *API {
	return &API{
		receiver: receiver,
		logger:   logger,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Post("/", a.receiveNotifications)
		r.Get("/{pspReference}", a.listNotifications)
	})
}

// receiveNotifications acknowledges a delivery with "[accepted]" once every
// item is stored. Anything else makes the processor redeliver.
func (a *API) receiveNotifications(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	delivery, err := webhook.Decode(body)
	if err != nil {
		a.logger.Error("decoding webhook", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := a.receiver.Ingest(r.Context(), delivery); err != nil {
		a.logger.Error("ingesting webhook", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("[accepted]"))
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	pspReference := chi.URLParam(r, "pspReference")

	notifications, err := a.receiver.ListNotifications(r.Context(), pspReference)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(notifications)
}
