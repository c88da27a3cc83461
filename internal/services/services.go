// package services defines clients for the HTTP APIs the relay talks to
//
// Meta Graph API (token endpoint, login dialog), and the relay's own HTTP surface
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider performs the two token calls against an identity provider.
type TokenProvider interface {
	// ExchangeCode trades an authorization code for a short-lived access token.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// ExchangeLongLived trades a short-lived access token for a long-lived one.
	ExchangeLongLived(ctx context.Context, shortLivedToken string) (*oauth2.Token, error)

	// Name returns the name of the provider (e.g., "Meta Graph API")
	Name() string
}

// AuthURLProvider builds the browser URL that starts the authorization code flow.
type AuthURLProvider interface {
	AuthCodeURL(state string) string
}
