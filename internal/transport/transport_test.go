package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valorantgo/valorant/internal/transport"
)

func TestSendEncodesJSONAndRunsConfigure(t *testing.T) {
	var gotContentType, gotCustom string
	var gotBody struct {
		Name string `json:"name"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Custom")
		require.NoError(t, readJSON(r, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := transport.New(server.Client())
	resp, err := client.Send(context.Background(), http.MethodPost, server.URL, map[string]string{"name": "val"}, func(req *http.Request) {
		req.Header.Set("X-Custom", "set")
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "set", gotCustom)
	require.Equal(t, "val", gotBody.Name)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.Decode(&out))
	require.True(t, out.OK)
}

func TestSendReturnsNon200Responses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	client := transport.New(server.Client())
	resp, err := client.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, "short and stout", string(resp.Body))
}

func TestSendNotifiesObservers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var exchanges []transport.Exchange
	client := transport.New(server.Client(), transport.WithObserver(func(e transport.Exchange) {
		exchanges = append(exchanges, e)
	}))

	_, err := client.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	require.Equal(t, http.MethodGet, exchanges[0].Method)
	require.Equal(t, http.StatusNoContent, exchanges[0].StatusCode)
	require.NoError(t, exchanges[0].Err)
}

func TestSendObservesCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	var observed transport.Exchange
	client := transport.New(server.Client(), transport.WithObserver(func(e transport.Exchange) {
		observed = e
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Send(ctx, http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, observed.Err, context.Canceled)
}

func readJSON(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
