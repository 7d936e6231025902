package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"chainview/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "127.0.0.1:8080", u.Host)

	u, err = parseBaseURL("localhost:9090/ignored?x=1#f")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", u.String())
}

func TestEndpointFetchEncodesQuery(t *testing.T) {
	var got url.Values
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Page[models.Name]{
			Items:      []models.Name{{Address: "0xabc", Name: "Alice"}},
			TotalItems: 31,
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)
	ep, err := NewEndpoint[models.Name](c, ResNames, "custom")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	page, err := ep.Fetch(ctx, models.Query{Offset: 20, Limit: 10, SortKey: "name", SortDir: "desc", Filter: " ali "})
	require.NoError(t, err)

	assert.Equal(t, "/api/names", gotPath)
	assert.Equal(t, "20", got.Get("offset"))
	assert.Equal(t, "10", got.Get("limit"))
	assert.Equal(t, "name", got.Get("sort"))
	assert.Equal(t, "desc", got.Get("dir"))
	assert.Equal(t, "ali", got.Get("filter"))
	assert.Equal(t, "custom", got.Get("facet"))
	assert.Equal(t, 31, page.TotalItems)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alice", page.Items[0].Name)
}

func TestEndpointMutateAndClean(t *testing.T) {
	type call struct {
		path string
		body string
	}
	var calls []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, call{path: r.Method + " " + r.URL.Path, body: string(b)})
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)
	ep, err := NewEndpoint[models.Monitor](c, ResMonitors, "")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ep.Mutate(ctx, models.OpDelete, models.Monitor{Address: "0xabc"}))
	require.NoError(t, ep.Clean(ctx, nil))

	require.Len(t, calls, 2)
	assert.Equal(t, "POST /api/monitors/delete", calls[0].path)
	assert.Contains(t, calls[0].body, `"address":"0xabc"`)
	assert.Equal(t, "POST /api/monitors/clean", calls[1].path)
	assert.JSONEq(t, `{"ids":[]}`, calls[1].body)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"name is locked"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	err = c.Mutate(context.Background(), ResNames, models.OpUpdate, models.Name{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "name is locked", apiErr.Message)
	assert.Contains(t, err.Error(), "name is locked")
}

func TestUnknownResource(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)

	_, err = NewEndpoint[models.Name](c, "blocks", "")
	assert.ErrorIs(t, err, ErrUnknownResource)
	assert.ErrorIs(t, c.Clean(context.Background(), "blocks", nil), ErrUnknownResource)
	assert.Error(t, c.Mutate(context.Background(), ResNames, "explode", models.Name{}))
}
