package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a Metabase instance: it opens a session and pulls the
// result rows of a saved card as loosely-typed JSON records.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient creates a Metabase client. baseURL is the instance root
// (e.g. http://metabase.internal:3000) without a trailing slash.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// AuthError indicates the session request was rejected.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("metabase authentication failed: status %d", e.StatusCode)
}

// FetchError indicates the card query failed or returned an unreadable body.
type FetchError struct {
	StatusCode int
	Reason     string
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("metabase fetch failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("metabase fetch failed: %s", e.Reason)
}

// Row is one loosely-typed record from a card query. Keys are whatever
// column headers the card exposes.
type Row map[string]any

// Field returns the first non-empty value among the given keys, trimmed
// and stringified. Numbers are rendered without a trailing ".0" so numeric
// grade columns round-trip as "7", not "7.0".
func (r Row) Field(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			if t == float64(int64(t)) {
				s = strconv.FormatInt(int64(t), 10)
			} else {
				s = strconv.FormatFloat(t, 'f', -1, 64)
			}
		case bool:
			s = strconv.FormatBool(t)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Authenticate opens a Metabase session and returns the short-lived token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{StatusCode: resp.StatusCode}
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.ID == "" {
		return "", &AuthError{StatusCode: resp.StatusCode}
	}

	return payload.ID, nil
}

// FetchCardRows runs the saved card identified by cardID and returns its
// rows in the order Metabase emits them.
func (c *Client) FetchCardRows(ctx context.Context, token string, cardID int) ([]Row, error) {
	url := fmt.Sprintf("%s/api/card/%d/query/json", c.baseURL, cardID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build card request: %w", err)
	}
	req.Header.Set("X-Metabase-Session", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Reason: fmt.Sprintf("read body: %v", err)}
	}

	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &FetchError{Reason: fmt.Sprintf("malformed body: %v", err)}
	}

	return rows, nil
}
