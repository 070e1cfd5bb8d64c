package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	userID uuid.UUID
}

func (a stubAuth) ParseUserID(token string) (uuid.UUID, error) {
	if token != "good" {
		return uuid.Nil, errors.New("bad token")
	}
	return a.userID, nil
}

func channelFor(id uuid.UUID) string { return "user_updates:" + id.String() }

func newTestHub(t *testing.T, userID uuid.UUID) (*Hub, *redis.Client, *httptest.Server) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	hub := NewHub(rc, stubAuth{userID: userID}, channelFor)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, rc, srv
}

func TestHub_RejectsBadToken(t *testing.T) {
	_, _, srv := newTestHub(t, uuid.New())

	for _, q := range []string{"", "?token=bad"} {
		resp, err := http.Get(srv.URL + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHub_RelaysPubSubToSocket(t *testing.T) {
	userID := uuid.New()
	hub, rc, srv := newTestHub(t, userID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	channel := channelFor(userID)
	require.Eventually(t, func() bool {
		subs, err := rc.PubSubNumSub(ctx, channel).Result()
		return err == nil && subs[channel] == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, hub.Connections(userID))

	payload := `{"type":"analytics_updated","payload":{}}`
	require.NoError(t, rc.Publish(ctx, channel, payload).Err())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(data))

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 20*time.Millisecond)
}
