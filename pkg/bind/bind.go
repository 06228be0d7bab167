// Package bind decodes an HTTP request body into loosely typed Fields.
//
// JSON objects and url-encoded forms end up in the same shape, so handlers
// read them the same way:
//
//	f, err := bind.Request(r)
//	title := f.String("title")
//	codes, present, ok := f.Strings("barcodes")
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/catalog/config"
)

// Fields holds the top-level members of a request body. JSON numbers are
// kept as json.Number; form values are strings, or []string for keys sent
// more than once or with a trailing "[]".
type Fields map[string]any

// Request decodes r.Body according to its Content-Type. Anything that is
// not a form is read as JSON. An empty body yields empty Fields. The body is
// capped at MAX_BODY_BYTES.
func Request(r *http.Request) (Fields, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		return form(r, false)
	case "multipart/form-data":
		return form(r, true)
	default:
		return jsonBody(r.Body)
	}
}

func jsonBody(body io.Reader) (Fields, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, tooLarge(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Fields{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var f Fields
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if f == nil {
		return nil, errors.New("invalid JSON: body must be an object")
	}
	return f, nil
}

func form(r *http.Request, multipart bool) (Fields, error) {
	var err error
	if multipart {
		err = r.ParseMultipartForm(config.MaxBodyBytes())
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, tooLarge(err)
	}

	f := make(Fields, len(r.PostForm))
	for key, values := range r.PostForm {
		if name, ok := strings.CutSuffix(key, "[]"); ok {
			f[name] = append([]string(nil), values...)
			continue
		}
		if len(values) > 1 {
			f[key] = append([]string(nil), values...)
			continue
		}
		f[key] = values[0]
	}
	return f, nil
}

func tooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
	}
	return fmt.Errorf("read body: %w", err)
}

// Present reports whether key carries a truthy value: anything except
// absent, null, false, 0 and "".
func (f Fields) Present(key string) bool {
	v, ok := f[key]
	if !ok {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		n, err := x.Float64()
		return err != nil || n != 0
	default:
		return true
	}
}

// String returns a scalar member as text, or "" when it is falsy or not a
// scalar.
func (f Fields) String(key string) string {
	if !f.Present(key) {
		return ""
	}
	switch x := f[key].(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return "true"
	default:
		return ""
	}
}

// Optional is like String but tells "sent as empty string" apart from
// "not sent". It returns nil when key is absent, null or not a scalar.
func (f Fields) Optional(key string) *string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	default:
		return nil
	}
	return &s
}

// Strings reads a list of strings. present is false when the member is
// falsy; ok is false when it is present but not a list of strings.
func (f Fields) Strings(key string) (list []string, present, ok bool) {
	if !f.Present(key) {
		return nil, false, false
	}
	switch x := f[key].(type) {
	case []string:
		return x, true, true
	case []any:
		list = make([]string, 0, len(x))
		for _, item := range x {
			s, isString := item.(string)
			if !isString {
				return nil, true, false
			}
			list = append(list, s)
		}
		return list, true, true
	default:
		return nil, true, false
	}
}
