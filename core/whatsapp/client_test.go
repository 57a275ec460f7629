package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

type capturedRequest struct {
	method string
	path   string
	apiKey string
	body   map[string]any
}

func newTestClient(t *testing.T, status int, captured *capturedRequest) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("D360-API-KEY")
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &captured.body)
			}
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(coreconfig.WhatsAppConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	return client, srv
}

func TestSendTextPayload(t *testing.T) {
	var captured capturedRequest
	client, _ := newTestClient(t, http.StatusCreated, &captured)

	err := client.SendText(context.Background(), "79001234567", "Привет!")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/v1/messages", captured.path)
	assert.Equal(t, "test-key", captured.apiKey)
	assert.Equal(t, "individual", captured.body["recipient_type"])
	assert.Equal(t, "79001234567", captured.body["to"])
	assert.Equal(t, "text", captured.body["type"])

	text, ok := captured.body["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Привет!", text["body"])
}

func TestSendButtonsLimitsAndTruncates(t *testing.T) {
	var captured capturedRequest
	client, _ := newTestClient(t, http.StatusOK, &captured)

	buttons := []Button{
		{ID: "b1", Title: "Очень длинное название кнопки которое не помещается"},
		{ID: "b2", Title: "Вторая"},
		{ID: "b3", Title: "Третья"},
		{ID: "b4", Title: "Лишняя"},
	}
	err := client.SendButtons(context.Background(), "79001234567", "Выберите:", buttons)
	require.NoError(t, err)

	interactive, ok := captured.body["interactive"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "button", interactive["type"])

	action, ok := interactive["action"].(map[string]any)
	require.True(t, ok)
	sent, ok := action["buttons"].([]any)
	require.True(t, ok)
	require.Len(t, sent, MaxButtons)

	first := sent[0].(map[string]any)
	assert.Equal(t, "reply", first["type"])
	reply := first["reply"].(map[string]any)
	assert.Equal(t, "b1", reply["id"])
	assert.Len(t, []rune(reply["title"].(string)), maxButtonTitleRunes)
}

func TestSendListPayload(t *testing.T) {
	var captured capturedRequest
	client, _ := newTestClient(t, http.StatusOK, &captured)

	sections := []ListSection{
		{Title: "Вид работы", Rows: []ListRow{
			{ID: "wt_field", Title: "Поле"},
			{ID: "wt_other", Title: "Другое", Description: "Прочие работы"},
		}},
	}
	err := client.SendList(context.Background(), "79001234567", "Что делали?", "Выбрать", sections)
	require.NoError(t, err)

	interactive := captured.body["interactive"].(map[string]any)
	assert.Equal(t, "list", interactive["type"])
	action := interactive["action"].(map[string]any)
	assert.Equal(t, "Выбрать", action["button"])

	got, ok := action["sections"].([]any)
	require.True(t, ok)
	require.Len(t, got, 1)
	rows := got[0].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, 2)
}

func TestMarkReadUsesPut(t *testing.T) {
	var captured capturedRequest
	client, _ := newTestClient(t, http.StatusOK, &captured)

	err := client.MarkRead(context.Background(), "wamid.abc123")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, captured.method)
	assert.Equal(t, "/v1/messages/wamid.abc123/mark_as_read", captured.path)
}

func TestSendTextRejectedStatus(t *testing.T) {
	var captured capturedRequest
	client, _ := newTestClient(t, http.StatusForbidden, &captured)

	err := client.SendText(context.Background(), "79001234567", "hi")
	assert.Error(t, err)
}

func TestSendNotRetriedOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(coreconfig.WhatsAppConfig{APIKey: "test-key", BaseURL: srv.URL})

	err := client.SendText(context.Background(), "79001234567", "hi")
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "a rejected send must not be re-delivered")
}
