package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/vera-landing/internal/lead"
)

const testToken = "123456:secret-token"

func TestClient_SendMessage_Succeeds(t *testing.T) {
	t.Parallel()

	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot"+testToken+"/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BotToken: testToken, ChatID: "-1001"}, srv.Client())

	require.NoError(t, client.SendMessage(context.Background(), "hello"))
	assert.Equal(t, "-1001", got.ChatID)
	assert.Equal(t, "hello", got.Text)
	assert.True(t, got.DisableWebPagePreview)
}

func TestClient_SendMessage_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "negative acknowledgement", status: http.StatusOK, body: `{"ok":false,"description":"chat not found"}`},
		{name: "non json acknowledgement", status: http.StatusOK, body: `<html>`},
		{name: "upstream error", status: http.StatusBadGateway, body: `{"ok":false}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"ok":false,"description":"Unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(Config{BaseURL: srv.URL, BotToken: testToken, ChatID: "-1001"}, srv.Client())
			err := client.SendMessage(context.Background(), "hello")

			require.ErrorIs(t, err, lead.ErrDelivery)
			var dErr *lead.DeliveryError
			require.ErrorAs(t, err, &dErr)
			assert.Equal(t, ChannelName, dErr.Channel)
			assert.Equal(t, tt.status, dErr.StatusCode)
		})
	}
}

func TestClient_SendMessage_NotConfigured(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BotToken: "  ", ChatID: "-1001"}, srv.Client())

	assert.False(t, client.Configured())
	err := client.SendMessage(context.Background(), "hello")
	require.ErrorIs(t, err, lead.ErrConfiguration)
	require.ErrorIs(t, err, lead.ErrDelivery)
	assert.Zero(t, calls.Load())
}

func TestClient_SendMessage_TransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := New(Config{BaseURL: baseURL, BotToken: testToken, ChatID: "-1001"}, nil)
	err := client.SendMessage(context.Background(), "hello")

	require.ErrorIs(t, err, lead.ErrDelivery)
	assert.NotContains(t, err.Error(), testToken)
}

func TestClient_SendMessage_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(Config{
		BaseURL:  srv.URL,
		BotToken: testToken,
		ChatID:   "-1001",
		Timeout:  50 * time.Millisecond,
	}, srv.Client())

	start := time.Now()
	err := client.SendMessage(context.Background(), "hello")

	require.ErrorIs(t, err, lead.ErrDelivery)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestChannel_DeliverComposesMessage(t *testing.T) {
	t.Parallel()

	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BotToken: testToken, ChatID: "-1001"}, srv.Client())
	clock := fixedClock{now: time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)}
	ch := NewChannel(client, clock, lead.MessageMeta{SiteDomain: "вера-лок.рф", PhoneRegion: "RU"})

	err := ch.Deliver(context.Background(), lead.Lead{Name: "Анна", Phone: "+79161234567", ContactMethod: "Telegram"})

	require.NoError(t, err)
	assert.Equal(t, ChannelName, ch.Name())
	assert.Contains(t, got.Text, "Новая заявка с сайта вера-лок.рф")
	assert.Contains(t, got.Text, "Имя: Анна")
	assert.Contains(t, got.Text, "Способ связи: Telegram")
	assert.Contains(t, got.Text, "Время (UTC): 2026-02-16T00:00:00.000Z")
	assert.NotContains(t, got.Text, "IP:")
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
