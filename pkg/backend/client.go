// Package backend talks to the explorer API and provides an in-memory
// stand-in with the same contract.
package backend

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
	"time"

	"chainview/pkg/models"
)

// ErrUnknownResource is returned for resource names the API does not serve.
var ErrUnknownResource = errors.New("unknown resource")

// Resources served by the API.
const (
	ResNames    = "names"
	ResMonitors = "monitors"
	ResAbis     = "abis"
	ResExports  = "exports"
	ResChunks   = "chunks"
)

var knownResources = map[string]bool{
	ResNames:    true,
	ResMonitors: true,
	ResAbis:     true,
	ResExports:  true,
	ResChunks:   true,
}

const (
	defaultBaseURL   = "http://127.0.0.1:8080"
	defaultUserAgent = "chainview/0.1"
	requestTimeout   = 10 * time.Second
)

// APIError is a non-2xx answer. Message is the server's error text when it
// sent one.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Client talks to the explorer HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a Client for baseURL. A bare host:port gets http://.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Fetch loads one page of resource into dest.
func (c *Client) Fetch(ctx context.Context, resource string, q models.Query, dest any) error {
	if !knownResources[resource] {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	values := url.Values{}
	values.Set("offset", strconv.Itoa(q.Offset))
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortKey != "" {
		values.Set("sort", q.SortKey)
		if q.SortDir != "" {
			values.Set("dir", q.SortDir)
		}
	}
	if f := strings.TrimSpace(q.Filter); f != "" {
		values.Set("filter", f)
	}
	if q.Facet != "" {
		values.Set("facet", q.Facet)
	}
	rel := &url.URL{Path: "/api/" + resource, RawQuery: values.Encode()}
	return c.doURL(ctx, http.MethodGet, rel, nil, dest)
}

// Mutate applies op to item.
func (c *Client) Mutate(ctx context.Context, resource string, op models.Operation, item any) error {
	if !knownResources[resource] {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	if !op.Valid() {
		return fmt.Errorf("unknown operation %q", op)
	}
	rel := &url.URL{Path: "/api/" + resource + "/" + string(op)}
	return c.doURL(ctx, http.MethodPost, rel, item, nil)
}

type cleanRequest struct {
	IDs []string `json:"ids"`
}

// Clean runs the bulk clean of resource. Empty ids cleans everything the
// server considers stale.
func (c *Client) Clean(ctx context.Context, resource string, ids []string) error {
	if !knownResources[resource] {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	if ids == nil {
		ids = []string{}
	}
	rel := &url.URL{Path: "/api/" + resource + "/clean"}
	return c.doURL(ctx, http.MethodPost, rel, cleanRequest{IDs: ids}, nil)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Path: rel.Path, Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
