// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/desertthunder/tokenrelay/internal/models"
	"golang.org/x/oauth2"
)

// MockProvider is a test double for [services.TokenProvider]
//
// It returns the configured tokens and errors and records every call.
type MockProvider struct {
	ShortToken *oauth2.Token
	ShortErr   error
	LongToken  *oauth2.Token
	LongErr    error

	mu          sync.Mutex
	codes       []string
	shortTokens []string
}

// NewMockProvider returns a provider that succeeds with the given tokens and long-lived expiry.
func NewMockProvider(short, long string, expiresIn int64) *MockProvider {
	return &MockProvider{
		ShortToken: &oauth2.Token{AccessToken: short, TokenType: "bearer"},
		LongToken:  &oauth2.Token{AccessToken: long, TokenType: "bearer", ExpiresIn: expiresIn},
	}
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	m.mu.Unlock()
	return m.ShortToken, m.ShortErr
}

func (m *MockProvider) ExchangeLongLived(ctx context.Context, shortLivedToken string) (*oauth2.Token, error) {
	m.mu.Lock()
	m.shortTokens = append(m.shortTokens, shortLivedToken)
	m.mu.Unlock()
	return m.LongToken, m.LongErr
}

func (m *MockProvider) Name() string { return "mock" }

// Codes returns the authorization codes passed to ExchangeCode.
func (m *MockProvider) Codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

// ShortTokens returns the tokens passed to ExchangeLongLived.
func (m *MockProvider) ShortTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.shortTokens...)
}

// MockRecorder collects audit records in memory.
type MockRecorder struct {
	Err error

	mu      sync.Mutex
	records []*models.ExchangeRecord
}

func (m *MockRecorder) Record(ctx context.Context, record *models.ExchangeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.Err
}

// Records returns every record passed to Record.
func (m *MockRecorder) Records() []*models.ExchangeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ExchangeRecord(nil), m.records...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
