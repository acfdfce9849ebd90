package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	icon := bytes.Repeat([]byte{7}, 256)
	detail := bytes.Repeat([]byte{9}, 4096)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.URL.Query().Get("action") == "raw" {
			w.Write([]byte(`{"%LAST_UPDATE%": "x", "%LAST_UPDATE_F%": "y", "Blue moon": 30335, "Coal": "453"}`))
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/w/Grand_Exchange/Buying_limits", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table><tr><th>Item</th><th>Limit</th></tr><tr><td>Coal</td><td>13,000</td></tr></table>`))
	})
	mux.HandleFunc("/images/Blue_moon.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(icon)
	})
	mux.HandleFunc("/images/Blue_moon_detail.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(detail)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSyncAndUpgrade(t *testing.T) {
	srv := newWikiServer(t)
	dir := t.TempDir()
	itemsDir := filepath.Join(dir, "items-json")
	imagesDir := filepath.Join(dir, "images")
	common := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--base-url", srv.URL,
		"--items-dir", itemsDir,
		"--images-dir", imagesDir,
		"--delay", "0s",
	}

	code, _, stderr := runArgs(t, append([]string{"sync"}, common...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "run finished")

	coal, err := os.ReadFile(filepath.Join(itemsDir, "453.json"))
	require.NoError(t, err)
	assert.Contains(t, string(coal), `"buy_limit": 13000`)

	moon, err := os.ReadFile(filepath.Join(itemsDir, "30335.json"))
	require.NoError(t, err)
	assert.Contains(t, string(moon), `"buy_limit": 10000`)

	icon, err := os.ReadFile(filepath.Join(imagesDir, "30335.png"))
	require.NoError(t, err)
	assert.Len(t, icon, 256)

	_, err = os.Stat(filepath.Join(imagesDir, "453.png"))
	assert.True(t, os.IsNotExist(err), "coal has no image on the fake wiki")

	code, _, stderr = runArgs(t, append([]string{"upgrade-images"}, common...)...)
	require.Equal(t, 0, code, stderr)

	upgraded, err := os.ReadFile(filepath.Join(imagesDir, "30335.png"))
	require.NoError(t, err)
	assert.Len(t, upgraded, 4096)
}

func TestRunFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	dir := t.TempDir()

	code, _, stderr := runArgs(t, "sync",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--base-url", srv.URL,
		"--items-dir", filepath.Join(dir, "items"),
		"--images-dir", filepath.Join(dir, "images"),
		"--delay", "0s")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "run aborted")
}

func TestRunConfigCommand(t *testing.T) {
	code, stdout, _ := runArgs(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--items-dir", "custom-items")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "itemsDir: custom-items")
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runArgs(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: geitems")

	code, _, stderr = runArgs(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command")

	code, _, _ = runArgs(t, "sync", "--log-level", "debug", "--base-url", "ftp://example.com", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
}
