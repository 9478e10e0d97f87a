package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"angohost-storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) EmisClient {
	return NewEmisClient(&config.Emis{
		BaseApiURL:  baseURL,
		FrameToken:  "test-token",
		CallbackURL: "https://store.example/api/payments/callback",
	})
}

func TestCreateFrameToken(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/frameToken", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"id": "frame-123"})
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).CreateFrameToken(context.Background(), 45000, "AH2608291234")
	require.NoError(t, err)

	assert.Equal(t, "frame-123", session.Token)
	assert.Equal(t, srv.URL+"/frame/frame-123", session.FrameURL)
	assert.Equal(t, "AH2608291234", got["reference"])
	assert.Equal(t, float64(45000), got["amount"])
	assert.Equal(t, "test-token", got["token"])
}

func TestCreateFrameToken_BadRequestMapsToUpstreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid request"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateFrameToken(context.Background(), 45000, "AH2608291234")
	assert.ErrorIs(t, err, ErrUpstreamRejected)
}

func TestCreateFrameToken_PHPErrorPageMapsToUpstreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<b>Fatal error</b>: Uncaught PHP Exception in /var/www/gpo.php"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateFrameToken(context.Background(), 45000, "AH2608291234")
	assert.ErrorIs(t, err, ErrUpstreamRejected)
}

func TestCreateFrameToken_OtherErrorsAreNotUpstreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("gateway exploded"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateFrameToken(context.Background(), 45000, "AH2608291234")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstreamRejected)
}

func TestGetPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/paymentStatus/frame-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"status":         "completed",
			"transaction_id": "TX-42",
		})
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).GetPaymentStatus(context.Background(), "frame-123")
	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, "TX-42", status.TransactionID)
}
