package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/tokenrelay/internal/testing"
)

func TestRelayClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			client := NewRelayClient("http://example.com/", customClient)

			if client.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL 'http://example.com', got %s", client.baseURL)
			}
			if client.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			client := NewRelayClient("", nil)

			if client.baseURL != "http://localhost:3000" {
				t.Errorf("expected default baseURL 'http://localhost:3000', got %s", client.baseURL)
			}
			if client.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
			}))
			defer server.Close()

			resp, err := NewRelayClient(server.URL, nil).Get(context.Background(), "/api/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !json.Valid(resp.Body) {
				t.Errorf("expected OK JSON response, got %+v", resp)
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := NewRelayClient(server.URL, nil).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("unexpected body %s", string(resp.Body))
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewRelayClient("http://example.com", nil).Get(context.Background(), "/test\x00invalid")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewRelayClient("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewRelayClient("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewRelayClient(server.URL, nil).Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/health" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"status":"OK","message":"Token exchange server is running","timestamp":"2025-01-01T00:00:00.000Z"}`))
		}))
		defer server.Close()

		status, err := NewRelayClient(server.URL, nil).Health(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status.Status != "OK" || status.Timestamp == "" {
			t.Errorf("unexpected health %+v", status)
		}
	})

	t.Run("Config", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"appId":"123","redirectUri":"http://localhost:3000/connect.html"}`))
		}))
		defer server.Close()

		cfg, err := NewRelayClient(server.URL, nil).Config(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.AppID != "123" || cfg.RedirectURI != "http://localhost:3000/connect.html" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("ExchangeToken", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}

				body, _ := io.ReadAll(r.Body)
				var data map[string]string
				if err := json.Unmarshal(body, &data); err != nil || data["code"] != "abc" {
					t.Errorf("expected code abc in body, got %s", string(body))
				}

				w.Write([]byte(`{"access_token":"long","token_type":"Bearer","expires_in":5184000,"message":"ok"}`))
			}))
			defer server.Close()

			resp, err := NewRelayClient(server.URL, nil).ExchangeToken(context.Background(), "abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.AccessToken != "long" || resp.TokenType != "Bearer" || resp.ExpiresIn != 5184000 {
				t.Errorf("unexpected response %+v", resp)
			}
		})

		t.Run("Error Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Facebook API Error: Invalid code (Code: 100)"}`))
			}))
			defer server.Close()

			_, err := NewRelayClient(server.URL, nil).ExchangeToken(context.Background(), "abc")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "Invalid code") {
				t.Errorf("expected status and message in error, got %v", err)
			}
		})

		t.Run("Error Body With Details", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Internal server error during token exchange","details":"boom"}`))
			}))
			defer server.Close()

			_, err := NewRelayClient(server.URL, nil).ExchangeToken(context.Background(), "abc")
			if err == nil || !strings.Contains(err.Error(), "boom") {
				t.Errorf("expected details in error, got %v", err)
			}
		})
	})
}
