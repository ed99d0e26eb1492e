// Package client is a typed Go client for the expense tracker REST API. It
// keeps the signed-in session and persists it through a SessionStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/stats"
)

// ErrNotSignedIn is returned by calls that need a session when there is none.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Kind    apperrors.Kind
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Kind apperrors.Kind `json:"kind"`
		Code string         `json:"code"`
	} `json:"error"`
}

// Profile is the signed-in user's account details.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Budget    decimal.Decimal `json:"budget"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProfileUpdate changes the fields that are set.
type ProfileUpdate struct {
	Name   *string          `json:"name,omitempty"`
	Budget *decimal.Decimal `json:"budget,omitempty"`
}

// NewTransaction is the payload for CreateTransaction. A zero Date lets the
// server use the current time.
type NewTransaction struct {
	Type        models.TransactionType
	Category    models.Category
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// TransactionUpdate changes the fields that are set.
type TransactionUpdate struct {
	Type        *models.TransactionType `json:"type,omitempty"`
	Category    *models.Category        `json:"category,omitempty"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Date        *string                 `json:"date,omitempty"`
}

// ListOptions narrows a transaction listing. Zero values are omitted.
// The date range applies only when both bounds are set.
type ListOptions struct {
	Page      int
	Limit     int
	Type      models.TransactionType
	Category  models.Category
	StartDate time.Time
	EndDate   time.Time
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Type != "" {
		q.Set("type", string(o.Type))
	}
	if o.Category != "" {
		q.Set("category", string(o.Category))
	}
	if !o.StartDate.IsZero() {
		q.Set("startDate", o.StartDate.UTC().Format(time.RFC3339))
	}
	if !o.EndDate.IsZero() {
		q.Set("endDate", o.EndDate.UTC().Format(time.RFC3339))
	}
	return q
}

// TransactionPage is one page of a listing.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   pagination.Meta      `json:"pagination"`
}

// Client talks to one API server on behalf of at most one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore

	mu      sync.RWMutex
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionStore persists the session in store instead of memory.
func WithSessionStore(store SessionStore) Option {
	return func(c *Client) { c.store = store }
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8080/api") and restores any stored session. A stored
// session that cannot be read is cleared.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   &MemoryStore{},
	}
	for _, opt := range opts {
		opt(c)
	}

	s, err := c.store.Load()
	if errors.Is(err, ErrCorruptSession) {
		if err := c.store.Clear(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	c.session = s
	return c, nil
}

// Session returns a copy of the current session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil {
		c.session = nil
		return c.store.Clear()
	}
	c.session = s
	return c.store.Save(s)
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

type authResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func (c *Client) signIn(ctx context.Context, path string, body interface{}) (*Session, error) {
	var res authResult
	if err := c.do(ctx, http.MethodPost, path, nil, body, false, &res); err != nil {
		return nil, err
	}
	s := &Session{User: User{ID: res.ID, Name: res.Name, Email: res.Email}, Token: res.Token}
	if err := c.setSession(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Register creates an account and signs in as it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.signIn(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login signs in with existing credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.signIn(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Logout forgets the session locally. Tokens are stateless, so the server is not contacted.
func (c *Client) Logout() error {
	return c.setSession(nil)
}

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, true, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the signed-in user's name or budget.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPut, "/auth/profile", nil, update, true, &p); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.session != nil && c.session.User.ID == p.ID {
		c.session.User.Name = p.Name
		s := *c.session
		c.mu.Unlock()
		return &p, c.store.Save(&s)
	}
	c.mu.Unlock()
	return &p, nil
}

// CreateTransaction records a transaction for the signed-in user.
func (c *Client) CreateTransaction(ctx context.Context, tx NewTransaction) (*models.Transaction, error) {
	body := map[string]interface{}{
		"type":        tx.Type,
		"category":    tx.Category,
		"amount":      tx.Amount,
		"description": tx.Description,
	}
	if !tx.Date.IsZero() {
		body["date"] = tx.Date.UTC().Format(time.RFC3339)
	}

	var out models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, body, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns one page of the signed-in user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, opts ListOptions) (*TransactionPage, error) {
	var page TransactionPage
	if err := c.do(ctx, http.MethodGet, "/transactions", opts.values(), nil, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTransaction returns one of the signed-in user's transactions.
func (c *Client) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTransaction changes the fields set in update.
func (c *Client) UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), nil, update, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTransaction removes one of the signed-in user's transactions.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, true, nil)
}

// Stats returns the type, category and monthly totals for the signed-in user.
func (c *Client) Stats(ctx context.Context) (*stats.Summary, error) {
	var out stats.Summary
	if err := c.do(ctx, http.MethodGet, "/transactions/stats", nil, nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads the filtered transactions as a file in format ("csv" or
// "xlsx") and writes it to w. Paging options are ignored.
func (c *Client) Export(ctx context.Context, format string, opts ListOptions, w io.Writer) error {
	q := opts.values()
	q.Del("page")
	q.Del("limit")
	q.Set("format", format)

	resp, err := c.send(ctx, http.MethodGet, "/transactions/export", q, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}, auth bool) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token := c.token()
		if token == "" {
			return nil, ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, auth bool, out interface{}) error {
	resp, err := c.send(ctx, method, path, query, body, auth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		// A rejected token will not start working again.
		if auth && resp.StatusCode == http.StatusUnauthorized {
			_ = c.setSession(nil)
		}
		return apiErr
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apiErr
	}
	if env.Message != "" {
		apiErr.Message = env.Message
	}
	if env.Error != nil {
		apiErr.Kind = env.Error.Kind
		apiErr.Code = env.Error.Code
	}
	return apiErr
}
