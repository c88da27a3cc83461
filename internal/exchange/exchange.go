package exchange

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tokenrelay/internal/models"
	"github.com/desertthunder/tokenrelay/internal/services"
	"github.com/desertthunder/tokenrelay/internal/shared"
)

// TokenType is the fixed type label of every issued token.
const TokenType = "Bearer"

// TokenResult is the long-lived token handed back to the caller.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Recorder persists one audit record per exchange attempt.
type Recorder interface {
	Record(ctx context.Context, record *models.ExchangeRecord) error
}

// Options contains the dependencies of a [Service].
type Options struct {
	Provider services.TokenProvider
	Recorder Recorder // optional
	Logger   *log.Logger
}

// Service performs the two-step code to long-lived token exchange.
//
// A Service holds no per-request state and is safe for concurrent use.
type Service struct {
	provider services.TokenProvider
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

// NewService creates a [Service]. A provider is required.
func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, errors.New("exchange: token provider is required")
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Service{
		provider: opts.Provider,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      time.Now,
	}, nil
}

// Exchange trades an authorization code for a long-lived access token.
func (s *Service) Exchange(ctx context.Context, code string) (*TokenResult, error) {
	start := s.now()
	logger := s.logger
	if id := shared.RequestIDFrom(ctx); id != "" {
		logger = shared.WithLogger(logger, "request_id", id)
	}

	result, err := s.exchange(ctx, logger, code)
	if err != nil {
		logger.Error("token exchange failed", "kind", KindOf(err), "error", err)
	}

	s.record(ctx, logger, start, result, err)
	return result, err
}

func (s *Service) exchange(ctx context.Context, logger *log.Logger, code string) (*TokenResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &Error{Kind: KindInvalidRequest, Message: "Authorization code is required"}
	}

	logger.Info("exchanging authorization code for access token", "provider", s.provider.Name())

	short, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, classify(err, "short-lived token request")
	}
	if short == nil || short.AccessToken == "" {
		return nil, &Error{Kind: KindUpstreamProtocol, Message: "failed to obtain short-lived access token"}
	}

	logger.Info("short-lived token obtained")

	long, err := s.provider.ExchangeLongLived(ctx, short.AccessToken)
	if err != nil {
		return nil, classify(err, "long-lived token request")
	}
	if long == nil || long.AccessToken == "" {
		return nil, &Error{Kind: KindUpstreamProtocol, Message: "failed to obtain long-lived access token"}
	}

	if long.ExpiresIn <= 0 {
		return nil, &Error{Kind: KindUpstreamProtocol, Message: "long-lived access token has no expiry"}
	}
	logger.Info("long-lived token obtained", "expires_in", long.ExpiresIn)

	return &TokenResult{
		AccessToken: long.AccessToken,
		TokenType:   TokenType,
		ExpiresIn:   long.ExpiresIn,
	}, nil
}

func (s *Service) record(ctx context.Context, logger *log.Logger, start time.Time, result *TokenResult, err error) {
	if s.recorder == nil {
		return
	}

	end := s.now()
	outcome := models.OutcomeSuccess
	if err != nil {
		outcome = models.OutcomeFailure
	}

	record := models.NewExchangeRecord(shared.RequestIDFrom(ctx), outcome, end)
	record.SetID(shared.GenerateID())
	record.SetDuration(end.Sub(start))

	if result != nil {
		record.SetExpiresIn(result.ExpiresIn)
	}

	if err != nil {
		code := 0
		var xerr *Error
		if errors.As(err, &xerr) {
			code = xerr.ProviderCode
		}
		record.SetFailure(string(KindOf(err)), code)
	}

	// Recorded even when the request context is already cancelled.
	if rerr := s.recorder.Record(context.WithoutCancel(ctx), record); rerr != nil {
		logger.Warn("failed to record exchange attempt", "error", rerr)
	}
}
