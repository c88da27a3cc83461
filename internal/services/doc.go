// Package services implements clients for the HTTP APIs the relay depends on.
//
// # Token Provider Interface
//
// [TokenProvider] abstracts the two calls of the long-lived token flow so the exchange service
// can be tested with a fake provider.
//
// # Graph Implementation
//
// [GraphService] talks to the Meta Graph API token endpoint ({base}/{version}/oauth/access_token).
// Both calls are GET requests with query parameters:
//   - code exchange: client_id, client_secret, redirect_uri, code
//   - long-lived upgrade: grant_type=fb_exchange_token, client_id, client_secret, fb_exchange_token
//
// Results are returned as [oauth2.Token] values with ExpiresIn and Expiry populated when the
// provider reports an expiry. A missing access_token is not an error at this layer; callers decide.
//
// Each call is bounded by its own timeout. Nothing is retried: authorization codes are one-time-use.
//
// [GraphService] also builds the login dialog URL through [oauth2.Config.AuthCodeURL].
//
// # Error Handling
//
// Structured provider rejections ({"error": {"message", "type", "code", "error_subcode", "fbtrace_id"}})
// are returned as [*ProviderError]. Transport failures, timeouts, non-JSON bodies and unexpected
// statuses are wrapped with [shared.ErrAPIRequest] or [shared.ErrTimeout].
//
// # Relay Client
//
// [RelayClient] calls a running relay's HTTP API (health, config, exchange-token). The CLI uses it.
package services
