package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *SSEServer {
	t.Helper()
	hub := NewSSEServer(nil)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func waitClients(t *testing.T, hub *SSEServer, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestShouldSendFiltersByUser(t *testing.T) {
	client := &SSEClient{UserID: "a"}

	assert.True(t, shouldSend(client, NewEvent(WidgetCreated, nil).ForUser("a")))
	assert.False(t, shouldSend(client, NewEvent(WidgetCreated, nil).ForUser("b")))
	assert.False(t, shouldSend(client, NewEvent(WidgetCreated, nil)))
}

func TestShouldSendFiltersByType(t *testing.T) {
	client := &SSEClient{UserID: "a", Filters: ParseFilter("widget:deleted, widget:updated")}

	assert.False(t, shouldSend(client, NewEvent(WidgetCreated, nil).ForUser("a")))
	assert.True(t, shouldSend(client, NewEvent(WidgetDeleted, nil).ForUser("a")))
}

func TestSubscribeReceivesOwnEventsOnly(t *testing.T) {
	hub := startHub(t)
	pub := NewPublisher(hub)

	a, cancelA, err := hub.Subscribe("user-a", nil)
	require.NoError(t, err)
	defer cancelA()
	waitClients(t, hub, 1)

	pub.PublishWidget(WidgetCreated, "user-b", "W2", nil)
	pub.PublishWidget(WidgetCreated, "user-a", "W1", nil)

	select {
	case ev := <-a.Events:
		assert.Equal(t, "W1", ev.WidgetID)
		assert.Equal(t, WidgetCreated, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("이벤트 수신 시간 초과")
	}

	select {
	case ev := <-a.Events:
		t.Fatalf("다른 사용자 이벤트 수신: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := startHub(t)

	_, cancel, err := hub.Subscribe("user-a", nil)
	require.NoError(t, err)
	waitClients(t, hub, 1)

	cancel()
	waitClients(t, hub, 0)
}

func TestSubscribeAfterStop(t *testing.T) {
	hub := NewSSEServer(nil)
	hub.Start()
	hub.Stop()

	_, _, err := hub.Subscribe("user-a", nil)
	assert.Error(t, err)
}

func TestServeStreamsEvents(t *testing.T) {
	hub := startHub(t)
	pub := NewPublisher(hub)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, "user-a")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connection:established\n", line)

	waitClients(t, hub, 1)
	pub.PublishWidget(WidgetDeleted, "user-a", "W1", map[string]string{"id": "W1"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: widget:deleted") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"widget_id":"W1"`)
}
