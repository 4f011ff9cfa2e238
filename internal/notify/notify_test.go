package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookline-io/bookline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverKey, endpoint string) *FCMClient {
	cfg := &config.Config{}
	cfg.FCM.ServerKey = serverKey
	cfg.FCM.Endpoint = endpoint
	return NewFCMClient(cfg)
}

func TestNewFCMClientWithoutKey(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, NewFCMClient(cfg))
}

func TestSend(t *testing.T) {
	var gotAuth string
	var gotPayload fcmPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient("server-key", srv.URL)
	err := client.Send(Message{
		To:    "tok123",
		Title: "Schedule Updated",
		Body:  "annual checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, "key=server-key", gotAuth)
	assert.Equal(t, "tok123", gotPayload.To)
	assert.Equal(t, "Schedule Updated", gotPayload.Data.Title)
	assert.Equal(t, "annual checkup", gotPayload.Data.Body)
}

func TestSendNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient("bad-key", srv.URL)
	err := client.Send(Message{To: "tok123", Title: "t", Body: "b"})
	assert.ErrorContains(t, err, "401")
}

func TestSendUnreachableEndpoint(t *testing.T) {
	client := newTestClient("server-key", "http://127.0.0.1:0")
	err := client.Send(Message{To: "tok123", Title: "t", Body: "b"})
	assert.Error(t, err)
}
