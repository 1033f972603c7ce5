package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.ClientConfig{
		BaseURL:  srv.URL + "/",
		Timeout:  5 * time.Second,
		Language: "en",
	}, opts...)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestFetchProductsDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/store/products", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"items":[{"id":"p1","name":"Widget","quantity":10,"price":"2.00"}],"version":4}}`)
	}, WithTokenSource(StaticToken("tok")))

	products, version, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Version(4), version)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("2")))
}

func TestFetchClientsNeverReturnsNilMap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"items":null,"version":0}}`)
	})

	clients, _, err := client.Clients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestSaveSendsVersionOnlyWhenChecked(t *testing.T) {
	var bodies []map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"items":[],"version":8}}`)
	})

	v, err := client.SaveSales(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, models.Version(8), v)
	_, err = client.SaveSales(context.Background(), models.Sales{}, models.AnyVersion)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.JSONEq(t, `7`, string(bodies[0]["version"]))
	assert.JSONEq(t, `[]`, string(bodies[0]["items"]))
	assert.NotContains(t, bodies[1], "version")
}

func TestErrorEnvelopeMapsToSentinels(t *testing.T) {
	cases := []struct {
		status int
		body   string
		target error
	}{
		{http.StatusConflict, `{"success":false,"error":{"code":"CONFLICT","message":"stale"}}`, ErrConflict},
		{http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"login"}}`, ErrUnauthorized},
		{http.StatusNotFound, `not json`, ErrNotFound},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, tc.body)
		})

		_, err := client.SaveProducts(context.Background(), models.Products{}, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.target)

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.status, apiErr.Status)
	}
}

func TestUnsuccessfulEnvelopeWithOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"error":{"code":"BAD_REQUEST","message":"nope"}}`)
	})

	_, _, err := client.Sales(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(config.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, _, err := client.Products(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestCheckSessionTreatsUnauthorizedAsAnonymous(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"x"}}`)
	})

	status, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
}

func TestLoginDecodesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin", req.Username)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"message":"ok","user":{"id":"u1","username":"admin"},"token":"abc","token_type":"Bearer","expires_at":"2030-01-01T00:00:00Z"}}`)
	})

	result, err := client.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", result.Token)
	assert.Equal(t, "admin", result.User.Username)
}
