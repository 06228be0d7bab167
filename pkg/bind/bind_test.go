package bind_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/bind"
)

func jsonRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestJSONBody(t *testing.T) {
	f, err := bind.Request(jsonRequest(`{"title":"Tea","price":4.5,"description":"","barcodes":["1","2"],"sku":null}`))
	require.NoError(t, err)

	assert.Equal(t, "Tea", f.String("title"))
	assert.Equal(t, "4.5", f.String("price"))
	assert.Equal(t, "", f.String("sku"))
	require.NotNil(t, f.Optional("description"))
	assert.Equal(t, "", *f.Optional("description"))
	assert.Nil(t, f.Optional("sku"))

	codes, present, ok := f.Strings("barcodes")
	assert.True(t, present)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, codes)
}

func TestFalsyValuesAreAbsent(t *testing.T) {
	f, err := bind.Request(jsonRequest(`{"a":"","b":0,"c":false,"d":null,"e":[],"f":"0"}`))
	require.NoError(t, err)

	for _, key := range []string{"a", "b", "c", "d", "missing"} {
		assert.False(t, f.Present(key), key)
	}
	assert.True(t, f.Present("e"))
	assert.True(t, f.Present("f"))
}

func TestStringsRejectsNonLists(t *testing.T) {
	f, err := bind.Request(jsonRequest(`{"a":"123","b":[1,2],"c":{"x":1},"d":""}`))
	require.NoError(t, err)

	for _, key := range []string{"a", "b", "c"} {
		_, present, ok := f.Strings(key)
		assert.True(t, present, key)
		assert.False(t, ok, key)
	}

	_, present, _ := f.Strings("d")
	assert.False(t, present)
}

func TestMalformedJSON(t *testing.T) {
	for _, body := range []string{`{"title":`, `[1,2]`, `null`} {
		_, err := bind.Request(jsonRequest(body))
		assert.Error(t, err, body)
	}

	f, err := bind.Request(jsonRequest(""))
	require.NoError(t, err)
	assert.Empty(t, f)
}

func TestFormBody(t *testing.T) {
	form := url.Values{}
	form.Set("title", "Tea")
	form.Add("barcodes[]", "1")
	form.Add("barcodes[]", "2")
	form.Set("single", "x")

	r := httptest.NewRequest(http.MethodPut, "/products/1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f, err := bind.Request(r)
	require.NoError(t, err)
	assert.Equal(t, "Tea", f.String("title"))

	codes, present, ok := f.Strings("barcodes")
	assert.True(t, present)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, codes)

	_, present, ok = f.Strings("single")
	assert.True(t, present)
	assert.False(t, ok)
}

func TestBodyTooLarge(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "16")

	_, err := bind.Request(jsonRequest(`{"title":"` + strings.Repeat("x", 64) + `"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
