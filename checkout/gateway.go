package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alovak/cardflow-checkout/checkout/models"
)

// Gateway calls the processor's checkout API. Each method builds one request
// body, posts it and decodes the result; it never retries.
type Gateway struct {
	logger    *slog.Logger
	transport Transport
	baseURL   string
}

func NewGateway(logger *slog.Logger, config *Config) (*Gateway, error) {
	if config == nil {
		config = DefaultConfig()
	}
	hc := config.HTTPClient
	if hc == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return NewGatewayWithTransport(logger, config, NewHTTPTransport(config.APIKey, hc))
}

// NewGatewayWithTransport is NewGateway with a caller supplied transport.
func NewGatewayWithTransport(logger *slog.Logger, config *Config, transport Transport) (*Gateway, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	base := config.BaseURL
	if base == "" {
		var err error
		if base, err = config.Environment.BaseURL(); err != nil {
			return nil, err
		}
	}

	return &Gateway{
		logger:    logger.With(slog.String("component", "checkout"), slog.String("env", config.Environment.String())),
		transport: transport,
		baseURL:   strings.TrimRight(base, "/"),
	}, nil
}

func (g *Gateway) endpoint(path string) string {
	return g.baseURL + "/" + APIVersion + path
}

// post sends req as JSON to path and hands a 2xx body to decode.
func (g *Gateway) post(ctx context.Context, path string, req any, decode func([]byte) error) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	start := time.Now()
	status, text, err := g.transport.Post(ctx, g.endpoint(path), body)
	if err != nil {
		g.logger.Info("request failed", slog.String("path", path), slog.Duration("took", time.Since(start)), slog.Any("err", err))
		return err
	}
	g.logger.Debug("request done", slog.String("path", path), slog.Int("status", status), slog.Duration("took", time.Since(start)))

	return DecodeResult(status, text, decode)
}

func (g *Gateway) postPayment(ctx context.Context, path string, req any) (models.Response, error) {
	var resp models.Response
	err := g.post(ctx, path, req, func(data []byte) error {
		var err error
		resp, err = models.DecodeResponse(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func requireReference(reference, merchantAccount string) error {
	if reference == "" {
		return errors.New("reference is required")
	}
	if merchantAccount == "" {
		return errors.New("merchant account is required")
	}
	return nil
}
