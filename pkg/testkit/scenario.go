// Package testkit drives HTTP API tests from scenario files.
//
// A scenario file holds a JSON array of requests that run in order against
// one handler, so later steps can rely on rows earlier steps created:
//
//	[
//	  {
//	    "name": "create",
//	    "requestMethod": "POST",
//	    "requestUrl": "/api/products",
//	    "requestBody": {"title": "Lamp", "sku": "L-1", "price": "9.99"},
//	    "expectedCode": 201,
//	    "expectedText": "1"
//	  },
//	  {
//	    "name": "show",
//	    "requestUrl": "/api/products/1",
//	    "expectedCode": 200,
//	    "expectedBody": {"title": "Lamp", "price": "9.99"}
//	  }
//	]
//
// expectedBody is matched as a subset: keys missing from it are not checked.
package testkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes one request and what it must answer.
type Scenario struct {
	Name string `json:"name"`

	RequestMethod string            `json:"requestMethod"`
	RequestURL    string            `json:"requestUrl"`
	RequestBody   json.RawMessage   `json:"requestBody"`
	RequestForm   map[string]string `json:"requestForm"`
	Headers       map[string]string `json:"headers"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"`
	ExpectedText *string         `json:"expectedText"`
}

// LoadScenarios reads a JSON array of scenarios from path.
func LoadScenarios(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q item %d: %w", abs, i, err)
		}
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if len(s.RequestBody) > 0 && len(s.RequestForm) > 0 {
		return fmt.Errorf("requestBody and requestForm are mutually exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = http.MethodGet
	}
	s.RequestMethod = strings.ToUpper(s.RequestMethod)
	return nil
}
