// Package transport is the client side of the vault API: it sends requests
// over an injected *http.Client and decodes the response envelopes.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/GophVault/internal/models"
)

// ErrTransport marks every failure that prevented a usable answer: network
// errors, timeouts, undecodable bodies and server-side (5xx) failures.
var ErrTransport = errors.New("transport failure")

// ServerError is a non-success envelope returned by the server.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Is reports 5xx errors as ErrTransport, since the operator treats storage
// failures like connection failures.
func (e *ServerError) Is(target error) bool {
	return target == ErrTransport && e.Code >= http.StatusInternalServerError
}

// DeleteStatus is the outcome of a delete call that reached the server.
type DeleteStatus int

const (
	// Deleted means at least one row was removed.
	Deleted DeleteStatus = iota + 1
	// NotFound means no row matched the pair.
	NotFound
)

// Client calls the vault API.
type Client struct {
	http    *http.Client
	baseURL string
}

// New returns a Client using httpClient against baseURL (e.g. "http://127.0.0.1:3000").
// Timeouts are httpClient's concern.
func New(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

type envelope struct {
	Message  string          `json:"message"`
	HTTPCode int             `json:"http_code"`
	Data     json.RawMessage `json:"data"`
}

// Add posts a new entry whose Password is already a digest and returns the
// created record.
func (c *Client) Add(ctx context.Context, entry models.NewEntry) (models.CredentialRecord, error) {
	var rec models.CredentialRecord

	body, err := json.Marshal(entry)
	if err != nil {
		return rec, fmt.Errorf("encode entry: %w", err)
	}
	env, status, err := c.do(ctx, http.MethodPost, "/add", body)
	if err != nil {
		return rec, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return rec, &ServerError{Code: status, Message: env.Message}
	}
	if hasData(env.Data) {
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return rec, fmt.Errorf("%w: decode record: %v", ErrTransport, err)
		}
	}
	return rec, nil
}

// List returns the records of owner. Absent or null data is an empty list.
func (c *Client) List(ctx context.Context, owner string) ([]models.CredentialRecord, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(owner), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &ServerError{Code: status, Message: env.Message}
	}

	records := []models.CredentialRecord{}
	if hasData(env.Data) {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, fmt.Errorf("%w: decode records: %v", ErrTransport, err)
		}
	}
	return records, nil
}

// Delete asks the server to remove every record matching (owner, name).
func (c *Client) Delete(ctx context.Context, owner, name string) (DeleteStatus, error) {
	path := "/delete/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	env, status, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return 0, err
	}
	switch {
	case status >= 200 && status < 300:
		return Deleted, nil
	case status == http.StatusNotFound:
		return NotFound, nil
	default:
		return 0, &ServerError{Code: status, Message: env.Message}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (envelope, int, error) {
	var env envelope

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return env, 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return env, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, resp.StatusCode, fmt.Errorf("%w: status %d with undecodable body: %v", ErrTransport, resp.StatusCode, err)
	}
	return env, resp.StatusCode, nil
}

func hasData(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
