package client

import (
	"testing"

	"github.com/storefront-qa/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte(`{"id":3,"name":"x","description":"y","price":2.5}`)}
	var p servicedef.Product
	require.NoError(t, resp.DecodeJSON(&p))
	assert.Equal(t, 3, p.ID.IntValue())
	assert.Equal(t, "x", p.Name)
	assert.Equal(t, 2.5, p.Price)
}

func TestDecodeJSONErrors(t *testing.T) {
	var v interface{}
	err := (&Response{StatusCode: 401, Method: "GET", URL: "http://x/product"}).DecodeJSON(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body with status 401")

	err = (&Response{StatusCode: 200, Body: []byte(`{`)}).DecodeJSON(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")
}

func TestSearch(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte(`[{"id":4},{"id":9},{"id":2}]`)}

	max, err := resp.Search("max([].id)")
	require.NoError(t, err)
	assert.Equal(t, 9.0, max)

	ids, err := resp.Search("[].id")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{4.0, 9.0, 2.0}, ids)

	_, err = resp.Search("max([")
	assert.Error(t, err)
}

func TestSearchOnEmptyList(t *testing.T) {
	max, err := (&Response{StatusCode: 200, Body: []byte(`[]`)}).Search("max([].id)")
	require.NoError(t, err)
	assert.Nil(t, max)
}

func TestResponseString(t *testing.T) {
	assert.Equal(t, "HTTP 401 (empty body)", (&Response{StatusCode: 401}).String())
	assert.Equal(t, `HTTP 200 []`, (&Response{StatusCode: 200, Body: []byte("[]")}).String())
}
