package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, endpoint string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "site:\n  url: https://example.com\n  domain: example.com\n" +
		"dispatch:\n  lead_endpoint: " + endpoint + "\n  channels: [endpoint]\n" +
		"logging:\n  development: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSend_Delivered(t *testing.T) {
	var (
		mu  sync.Mutex
		got map[string]any
	)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	out, err := execute(t, "--config", writeConfig(t, upstream.URL),
		"send", "--name", "Анна", "--phone", "+79161234567",
		"--page-url", "https://example.com/?utm_source=ya", "--utm-campaign", "spring")
	require.NoError(t, err)
	assert.Contains(t, out, "delivered via endpoint")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Анна", got["name"])
	assert.Equal(t, "Телефон", got["contact_method"])
	assert.Equal(t, "ya", got["utm_source"])
	assert.Equal(t, "spring", got["utm_campaign"])
}

func TestSend_Failed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	_, err := execute(t, "--config", writeConfig(t, upstream.URL),
		"send", "--name", "Анна", "--phone", "+7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to send lead")
}

func TestSend_MissingFields(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, "http://127.0.0.1:1"), "send", "--name", "Анна")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required fields: name, phone")
}

func TestRoot_BadConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
