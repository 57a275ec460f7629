package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-agro/terrabot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
	err    error
	panics bool
}

func (d *recordingDispatcher) HandleEvent(_ context.Context, ev Event) error {
	if d.panics {
		panic("handler exploded")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return d.err
}

func (d *recordingDispatcher) seen() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(opts).Mux())
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyChallengeEcho(t *testing.T) {
	srv := newTestServer(t, Options{VerifyToken: "secret"})

	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=12345")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "12345", string(buf[:n]))
}

func TestVerifyRejectsBadToken(t *testing.T) {
	srv := newTestServer(t, Options{VerifyToken: "secret"})

	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestReceiveDispatchesEvents(t *testing.T) {
	d := &recordingDispatcher{}
	srv := newTestServer(t, Options{VerifyToken: "secret", Dispatcher: d})

	body := `{"messages": [{"from": "79991234567", "id": "wamid.1", "type": "text", "text": {"body": "меню"}}]}`
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	events := d.seen()
	require.Len(t, events, 1)
	assert.Equal(t, "меню", events[0].Text)
}

func TestReceiveEmptyBodyAnsweredOK(t *testing.T) {
	d := &recordingDispatcher{}
	srv := newTestServer(t, Options{VerifyToken: "secret", Dispatcher: d})

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, d.seen())
}

func TestReceiveMalformedBodyAnsweredOK(t *testing.T) {
	d := &recordingDispatcher{}
	srv := newTestServer(t, Options{VerifyToken: "secret", Dispatcher: d})

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, d.seen())
}

func TestReceiveSurvivesHandlerPanic(t *testing.T) {
	d := &recordingDispatcher{panics: true}
	srv := newTestServer(t, Options{VerifyToken: "secret", Dispatcher: d})

	body := `{"messages": [{"from": "79991234567", "id": "wamid.1", "type": "text", "text": {"body": "boom"}}]}`
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReceiveRateLimitsSender(t *testing.T) {
	d := &recordingDispatcher{}
	srv := newTestServer(t, Options{
		VerifyToken:  "secret",
		Dispatcher:   d,
		RateInterval: time.Minute,
	})

	body := `{"messages": [{"from": "79991234567", "id": "wamid.1", "type": "text", "text": {"body": "раз"}}]}`
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Len(t, d.seen(), 1)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{VerifyToken: "secret"})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
