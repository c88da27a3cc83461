// Meta Graph API implementation of [TokenProvider]
//
// Token endpoint reference: https://developers.facebook.com/docs/facebook-login/guides/access-tokens/get-long-lived
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/tokenrelay/internal/shared"
	"golang.org/x/oauth2"
)

const (
	graphBaseURL      = "https://graph.facebook.com"
	graphDialogURL    = "https://www.facebook.com"
	graphAPIVersion   = "v19.0"
	exchangeGrantType = "fb_exchange_token"
	defaultTimeout    = 10 * time.Second
	maxResponseBytes  = 1 << 20
)

// ProviderError is a structured rejection returned by the Graph API.
type ProviderError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	Subcode    int    `json:"error_subcode"`
	TraceID    string `json:"fbtrace_id"`
	StatusCode int    `json:"-"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("graph api error %d: %s", e.Code, e.Message)
}

// graphTokenResponse is the body of oauth/access_token for both success and error cases.
type graphTokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Error       json.RawMessage `json:"error"`
}

// GraphOptions configures a [GraphService].
type GraphOptions struct {
	AppID       string
	AppSecret   string
	RedirectURI string
	BaseURL     string   // defaults to https://graph.facebook.com
	DialogURL   string   // defaults to https://www.facebook.com
	APIVersion  string   // defaults to v19.0
	Scopes      []string // requested in the login dialog
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// GraphService implements [TokenProvider] for the Meta Graph API.
type GraphService struct {
	config     *oauth2.Config
	tokenURL   *url.URL
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// NewGraphService creates a Graph API client with the given application credentials.
func NewGraphService(opts GraphOptions) (*GraphService, error) {
	if opts.AppID == "" {
		return nil, fmt.Errorf("%w: missing app id", shared.ErrMissingCredentials)
	}
	if opts.AppSecret == "" {
		return nil, fmt.Errorf("%w: missing app secret", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = graphBaseURL
	}
	if opts.DialogURL == "" {
		opts.DialogURL = graphDialogURL
	}
	if opts.APIVersion == "" {
		opts.APIVersion = graphAPIVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	version := strings.Trim(opts.APIVersion, "/")
	config := &oauth2.Config{
		ClientID:     opts.AppID,
		ClientSecret: opts.AppSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       opts.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  strings.TrimRight(opts.DialogURL, "/") + "/" + version + "/dialog/oauth",
			TokenURL: strings.TrimRight(opts.BaseURL, "/") + "/" + version + "/oauth/access_token",
		},
	}

	tokenURL, err := ParseEndpoint(config.Endpoint.TokenURL)
	if err != nil {
		return nil, err
	}

	return &GraphService{
		config:     config,
		tokenURL:   tokenURL,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		now:        time.Now,
	}, nil
}

func (g *GraphService) Name() string {
	return "Meta Graph API"
}

// TokenURL returns the token endpoint both exchange steps call.
func (g *GraphService) TokenURL() string {
	return g.config.Endpoint.TokenURL
}

// AuthCodeURL returns the login dialog URL for the configured app and redirect URI.
func (g *GraphService) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a short-lived access token.
func (g *GraphService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	params := url.Values{}
	params.Set("client_id", g.config.ClientID)
	params.Set("client_secret", g.config.ClientSecret)
	params.Set("redirect_uri", g.config.RedirectURL)
	params.Set("code", code)

	return g.requestToken(ctx, params)
}

// ExchangeLongLived trades a short-lived access token for a long-lived one (about 60 days).
func (g *GraphService) ExchangeLongLived(ctx context.Context, shortLivedToken string) (*oauth2.Token, error) {
	params := url.Values{}
	params.Set("grant_type", exchangeGrantType)
	params.Set("client_id", g.config.ClientID)
	params.Set("client_secret", g.config.ClientSecret)
	params.Set(exchangeGrantType, shortLivedToken)

	return g.requestToken(ctx, params)
}

// requestToken performs one GET against the token endpoint and decodes the result.
func (g *GraphService) requestToken(ctx context.Context, params url.Values) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reqURL := *g.tokenURL
	reqURL.RawQuery = params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", scrubURLError(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			return nil, fmt.Errorf("%w: token request after %v", shared.ErrTimeout, g.timeout)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, scrubURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload graphTokenResponse
	decodeErr := json.Unmarshal(body, &payload)

	if decodeErr == nil {
		if perr := parseProviderError(payload.Error, resp.StatusCode); perr != nil {
			return nil, perr
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", shared.ErrAPIRequest, decodeErr)
	}

	token := &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		ExpiresIn:   payload.ExpiresIn,
	}
	if payload.ExpiresIn > 0 {
		token.Expiry = g.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}

	return token, nil
}

// parseProviderError decodes the "error" member, which is normally an object but may be a bare string.
func parseProviderError(raw json.RawMessage, status int) *ProviderError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var perr ProviderError
	if err := json.Unmarshal(raw, &perr); err != nil {
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return nil
		}
		perr.Message = message
	}
	perr.StatusCode = status
	return &perr
}

// ParseEndpoint checks that raw is an absolute http(s) URL.
func ParseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint %q: %v", shared.ErrInvalidConfig, raw, scrubURLError(err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint %q is not an absolute http(s) URL", shared.ErrInvalidConfig, raw)
	}
	return u, nil
}

// scrubURLError drops the request URL from transport errors; it carries the app secret.
func scrubURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s token endpoint: %w", uerr.Op, uerr.Err)
	}
	return err
}
