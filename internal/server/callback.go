package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/tokenrelay/internal/exchange"
	"github.com/desertthunder/tokenrelay/internal/shared"
)

// CallbackResult contains the outcome of a browser login.
type CallbackResult struct {
	Token *exchange.TokenResult
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

type callbackView struct {
	Title   string
	Color   string
	Message string
}

// CallbackHandler receives the provider's redirect during a CLI login and runs the exchange.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	exchanger   Exchanger
	state       string
	path        string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler serving path that accepts a single redirect carrying state.
func NewCallbackHandler(exchanger Exchanger, state, path string) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{
		exchanger:  exchanger,
		state:      state,
		path:       path,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the redirect from the login dialog.
//
// Validates the state parameter, exchanges the code, and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		renderCallback(w, http.StatusBadRequest, "Callback already processed", "This login has already completed.")
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(CallbackResult{err: fmt.Errorf("%w: state parameter mismatch", shared.ErrInvalidState)})
		renderCallback(w, http.StatusBadRequest, "Invalid state parameter", "Start the login again from the terminal.")
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(CallbackResult{err: err})
		renderCallback(w, http.StatusBadRequest, "Authorization failed", query.Get("error_description"))
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.Send(CallbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		status, body := ErrorBody(err, false)
		renderCallback(w, status, "Token exchange failed", body.Error)
		return
	}

	h.Send(CallbackResult{Token: token})
	renderCallback(w, http.StatusOK, "✓ Authorization Successful", "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func renderCallback(w http.ResponseWriter, status int, title, message string) {
	color := "#1877F2"
	if status != http.StatusOK {
		color = "#D93025"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	callbackPage.Execute(w, callbackView{Title: title, Color: color, Message: message})
}
