// Package exchange implements the long-lived token exchange.
//
// [Service.Exchange] validates the authorization code, trades it for a short-lived access token,
// upgrades that token to a long-lived one and returns a [TokenResult]. The two provider calls are
// strictly sequential and share the caller's context; any failure ends the exchange before a token
// is handed out.
//
// Failures are classified as an [*Error] with a [Kind]:
//   - [KindInvalidRequest]: the code is missing
//   - [KindUpstreamRejected]: the provider returned a structured error (message and code)
//   - [KindUpstreamProtocol]: the provider answered without an access token
//   - [KindInternal]: transport faults, timeouts, malformed responses
//
// When a [Recorder] is configured, every attempt is written to it as a [models.ExchangeRecord].
// Recorder failures are logged and never change the outcome.
package exchange
