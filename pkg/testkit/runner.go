package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// RunFile loads the scenarios in path and runs them in order as subtests.
func RunFile(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	scenarios, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	Run(t, handler, scenarios...)
}

// Run fires each scenario against handler. A failing step does not stop the
// ones after it.
func Run(t *testing.T, handler http.Handler, scenarios ...*Scenario) {
	t.Helper()

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			rec := Do(handler, s)
			AssertStatusCode(t, s, rec.Code)
			AssertJSONBody(t, s, s.ExpectedBody, rec.Body.Bytes())
			AssertTextBody(t, s, rec.Body.String())
		})
	}
}

// Do builds the scenario's request and serves it without asserting anything.
func Do(handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(s.RequestForm) > 0:
		form := url.Values{}
		for k, v := range s.RequestForm {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case len(s.RequestBody) > 0:
		body = bytes.NewReader(s.RequestBody)
		contentType = "application/json"
	}

	req := httptest.NewRequest(s.RequestMethod, s.RequestURL, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
