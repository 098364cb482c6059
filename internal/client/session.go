// Package client provides an http.RoundTripper that holds a user session
// and transparently refreshes it when the service rejects an access token.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Session holds the token pair for an authenticated user. It is safe for
// concurrent use by multiple requests sharing one transport.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	companyID    string
}

// NewSession creates a session from an existing token pair.
func NewSession(accessToken, refreshToken, companyID string) *Session {
	return &Session{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		companyID:    companyID,
	}
}

// Tokens returns the current token pair.
func (s *Session) Tokens() (accessToken, refreshToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// CompanyID returns the tenant the session belongs to.
func (s *Session) CompanyID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companyID
}

// SetTokens replaces the token pair after a refresh.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops both tokens. Subsequent requests go out unauthenticated.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
}

// Transport attaches the session's credentials to outgoing requests and
// performs at most one refresh-and-retry when the service answers 401.
type Transport struct {
	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper

	// RefreshURL is the absolute URL of the token refresh endpoint.
	RefreshURL string

	Session *Session
}

// NewTransport creates a transport bound to the given session.
func NewTransport(session *Session, refreshURL string) *Transport {
	return &Transport{
		RefreshURL: refreshURL,
		Session:    session,
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	accessToken, refreshToken := t.Session.Tokens()

	resp, err := t.send(req, accessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || refreshToken == "" {
		return resp, nil
	}

	// One refresh attempt. If it fails the caller sees the original 401.
	newAccess, ok := t.refresh(req, refreshToken)
	if !ok {
		return resp, nil
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return resp, nil
	}

	resp.Body.Close()
	return t.send(retry, newAccess)
}

func (t *Transport) send(req *http.Request, accessToken string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if accessToken != "" {
		out.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if companyID := t.Session.CompanyID(); companyID != "" {
		out.Header.Set("Company-Id", companyID)
	}
	return t.base().RoundTrip(out)
}

// refresh exchanges the refresh token for a new pair and stores it on the
// session. Returns the new access token and whether the exchange succeeded.
func (t *Transport) refresh(orig *http.Request, refreshToken string) (string, bool) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", false
	}

	refreshReq, err := http.NewRequestWithContext(orig.Context(), http.MethodPost, t.RefreshURL, bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	refreshReq.Header.Set("Content-Type", "application/json")

	resp, err := t.base().RoundTrip(refreshReq)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil || pair.AccessToken == "" {
		return "", false
	}

	t.Session.SetTokens(pair.AccessToken, pair.RefreshToken)
	return pair.AccessToken, true
}

// cloneRequest rebuilds the request body for the retry. Requests with a
// body must carry GetBody, which net/http sets for common body types.
func cloneRequest(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}
