package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tokenrelay/internal/exchange"
	"github.com/desertthunder/tokenrelay/internal/services"
	"github.com/desertthunder/tokenrelay/internal/shared"
)

const (
	internalErrorMessage = "Internal server error during token exchange"
	healthMessage        = "Token exchange server is running"

	// timestampFormat is RFC 3339 with milliseconds.
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"

	maxBodyBytes = 1 << 20
)

// SuccessMessage accompanies every issued token.
const SuccessMessage = "Successfully obtained long-lived access token (60 days)"

// Exchanger runs one code to long-lived token exchange.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*exchange.TokenResult, error)
}

// Options contains the dependencies of the relay's HTTP surface.
type Options struct {
	Config   *shared.Config
	Exchange Exchanger
	Logger   *log.Logger
	Now      func() time.Time // defaults to time.Now
}

// NewRouter builds the relay router with its middleware stack and API routes.
func NewRouter(opts Options) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	dev := opts.Config.IsDevelopment()

	router := NewBasicRouter()
	router.Use(RequestID(), Logger(opts.Logger), Recover(opts.Logger, dev), CORS())

	limited := RateLimit(NewLimiter(opts.Config.Limits))
	router.Handle(http.MethodPost, "/api/exchange-token", limited(ExchangeHandler(opts.Exchange, dev)))
	router.Handle(http.MethodGet, "/api/health", HealthHandler(opts.Now))
	router.Handle(http.MethodGet, "/api/config", ConfigHandler(opts.Config))

	return router
}

type exchangeRequest struct {
	Code string `json:"code"`
}

// ExchangeHandler serves POST /api/exchange-token.
func ExchangeHandler(svc Exchanger, dev bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exchangeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, services.ErrorResponse{Error: "Invalid JSON body"})
			return
		}

		result, err := svc.Exchange(r.Context(), req.Code)
		if err != nil {
			status, body := ErrorBody(err, dev)
			writeJSON(w, status, body)
			return
		}

		writeJSON(w, http.StatusOK, services.ExchangeResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
			ExpiresIn:   result.ExpiresIn,
			Message:     SuccessMessage,
		})
	}
}

// ErrorBody maps an exchange failure to its status code and response body.
//
// Diagnostic details are attached to internal failures only when dev is set.
func ErrorBody(err error, dev bool) (int, services.ErrorResponse) {
	var xerr *exchange.Error
	errors.As(err, &xerr)

	switch exchange.KindOf(err) {
	case exchange.KindInvalidRequest:
		return http.StatusBadRequest, services.ErrorResponse{Error: xerr.Message}
	case exchange.KindUpstreamRejected:
		return http.StatusBadRequest, services.ErrorResponse{
			Error: fmt.Sprintf("Facebook API Error: %s (Code: %d)", xerr.Message, xerr.ProviderCode),
		}
	default:
		body := services.ErrorResponse{Error: internalErrorMessage}
		if dev {
			body.Details = err.Error()
		}
		return http.StatusInternalServerError, body
	}
}

// HealthHandler serves GET /api/health.
func HealthHandler(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, services.HealthStatus{
			Status:    "OK",
			Message:   healthMessage,
			Timestamp: now().UTC().Format(timestampFormat),
		})
	}
}

// ConfigHandler serves GET /api/config. Only the public values are exposed.
func ConfigHandler(cfg *shared.Config) http.HandlerFunc {
	body := services.PublicConfig{
		AppID:       cfg.App.ID,
		RedirectURI: cfg.App.RedirectURI,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
