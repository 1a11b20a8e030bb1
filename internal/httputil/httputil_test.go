// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON_DecodesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test/0.1", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"symbol":"APOE","start":44905791}`))
	}))
	defer ts.Close()

	var out map[string]any
	err := GetJSON(context.Background(), ts.Client(), ts.URL, "test/0.1", &out)
	require.NoError(t, err)
	assert.Equal(t, "APOE", out["symbol"])
	assert.Equal(t, float64(44905791), out["start"])
}

func TestGetJSON_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	var out map[string]any
	err := GetJSON(context.Background(), ts.Client(), ts.URL, "test/0.1", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGetJSON_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"symbol":`))
	}))
	defer ts.Close()

	var out map[string]any
	err := GetJSON(context.Background(), ts.Client(), ts.URL, "test/0.1", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestGetJSON_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused

	var out map[string]any
	err := GetJSON(context.Background(), http.DefaultClient, ts.URL, "test/0.1", &out)
	require.Error(t, err)
}

func TestGetJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := GetJSON(ctx, ts.Client(), ts.URL, "test/0.1", &out)
	require.Error(t, err)
}
