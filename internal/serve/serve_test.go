package serve

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, doc string) (*Server, *httptest.Server) {
	t.Helper()
	s := New(":0", func() ([]byte, error) {
		return []byte(doc), nil
	}, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestIndexServesDocumentWithReloadSnippet(t *testing.T) {
	_, ts := testServer(t, "<html><body><p>hello</p></body></html>")

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<p>hello</p>")
	assert.Contains(t, string(body), "/livereload")

	// Snippet lands before the closing body tag.
	idx := strings.Index(string(body), "/livereload")
	end := strings.Index(string(body), "</body>")
	assert.Less(t, idx, end)
}

func TestUnknownPathIs404(t *testing.T) {
	_, ts := testServer(t, "<html></html>")

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBroadcastReachesLivereloadClients(t *testing.T) {
	s, ts := testServer(t, "<html></html>")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/livereload"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the client.
	time.Sleep(50 * time.Millisecond)
	s.Broadcast()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))
}

func TestListenAndServeStopsOnContextCancel(t *testing.T) {
	s := New("127.0.0.1:0", func() ([]byte, error) {
		return []byte("<html></html>"), nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	// Let the listener come up, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down on context cancellation")
	}
}

func TestInjectReloadWithoutBodyTag(t *testing.T) {
	out := injectReload([]byte("plain text"))
	assert.Contains(t, string(out), "plain text")
	assert.Contains(t, string(out), "/livereload")
}
