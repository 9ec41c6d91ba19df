package session_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/valorantgo/valorant/auth"
	"github.com/valorantgo/valorant/riot"
	"github.com/valorantgo/valorant/session"
)

func TestEstablish(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/authorization", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "ssid", Value: "SESSION", Path: "/"})
		fmt.Fprint(w, `{"type":"auth"}`)
	})
	mux.HandleFunc("PUT /api/v1/authorization", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tokenBody("FRESH"))
	})
	mux.HandleFunc("POST /entitlements/token/v1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer FRESH", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"entitlements_token":"ENTITLEMENTS_TOKEN"}`)
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sub":"3fa8598d-066e-5bdb-998c-74c015c5dba5"}`)
	})
	mux.HandleFunc("PUT /pas/v1/product/valorant", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"","affinities":{"live":"na"}}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()
	endpoints := auth.Endpoints{Auth: server.URL, Entitlements: server.URL + "/entitlements", Affinity: server.URL}

	established, err := session.Establish(context.Background(), testCredentials, nil,
		session.WithAuthOptions(auth.WithEndpoints(endpoints), auth.WithHTTPClient(server.Client())))
	require.NoError(t, err)

	require.Equal(t, &testCredentials, established.Credentials)
	require.Equal(t, "FRESH", established.AccessToken.Token)
	require.Equal(t, "Bearer", established.AccessToken.Type)
	require.Equal(t, "ENTITLEMENTS_TOKEN", established.EntitlementsToken)
	require.Equal(t, "3fa8598d-066e-5bdb-998c-74c015c5dba5", established.UserID.String())
	require.Equal(t, riot.NorthAmerica, established.Location)
	require.NotEmpty(t, established.Cookies)
	require.False(t, established.HasExpired)
}

func TestEstablishResumesFromSeededCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/authorization", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("ssid"); err != nil {
			t.Error("seeded cookies must accompany the probe")
		}
		fmt.Fprint(w, tokenBody("RESUMED"))
	})
	mux.HandleFunc("POST /entitlements/token/v1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"entitlements_token":"ENTITLEMENTS_TOKEN"}`)
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sub":"3fa8598d-066e-5bdb-998c-74c015c5dba5"}`)
	})
	mux.HandleFunc("PUT /pas/v1/product/valorant", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"","affinities":{"live":"eu"}}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()
	endpoints := auth.Endpoints{Auth: server.URL, Entitlements: server.URL + "/entitlements", Affinity: server.URL}

	established, err := session.Establish(context.Background(), testCredentials, nil,
		session.WithCookiesFrom([]auth.Cookie{{Name: "ssid", Value: "SESSION", Path: "/"}}),
		session.WithAuthOptions(auth.WithEndpoints(endpoints), auth.WithHTTPClient(server.Client())))
	require.NoError(t, err)
	require.Equal(t, "RESUMED", established.AccessToken.Token)
	require.Equal(t, riot.Europe, established.Location)
}

func TestEstablishFailsWhenLookupFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/authorization", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tokenBody("FRESH"))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sub":"3fa8598d-066e-5bdb-998c-74c015c5dba5"}`)
	})
	mux.HandleFunc("PUT /pas/v1/product/valorant", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"","affinities":{"live":"eu"}}`)
	})
	mux.HandleFunc("POST /entitlements/token/v1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	defer server.Close()
	endpoints := auth.Endpoints{Auth: server.URL, Entitlements: server.URL + "/entitlements", Affinity: server.URL}

	start := time.Now()
	_, err := session.Establish(context.Background(), testCredentials, nil,
		session.WithAuthOptions(auth.WithEndpoints(endpoints), auth.WithHTTPClient(server.Client())))
	require.Error(t, err)
	require.Less(t, time.Since(start), 10*time.Second)
}
