package testkit_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/testkit"
)

var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","database":"up"}`)) //nolint:errcheck
	case "/echo":
		r.ParseForm() //nolint:errcheck
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "title=%s", r.PostForm.Get("title"))
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorText":"Not Found"}`)) //nolint:errcheck
	}
})

func TestRunFile(t *testing.T) {
	testkit.RunFile(t, testHandler, "testdata/echo.json")
}

func TestLoadScenarios_DefaultsMethod(t *testing.T) {
	scenarios, err := testkit.LoadScenarios("testdata/echo.json")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, http.MethodGet, scenarios[0].RequestMethod)
	assert.Equal(t, http.MethodPost, scenarios[1].RequestMethod)
}

func TestLoadScenarios_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"x","requestUrl":"/"}]`), 0o644))

	_, err := testkit.LoadScenarios(path)
	assert.ErrorContains(t, err, "expectedCode is required")
}

func TestDiffJSON(t *testing.T) {
	exp := map[string]any{"a": "1", "list": []any{"x"}}

	assert.Empty(t, testkit.DiffJSON("", exp, map[string]any{"a": "1", "b": 2.0, "list": []any{"x"}}))
	assert.Len(t, testkit.DiffJSON("", exp, map[string]any{"a": "2", "list": []any{"x"}}), 1)
	assert.Len(t, testkit.DiffJSON("", exp, map[string]any{"list": []any{"x", "y"}}), 2)
}
