package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Response is a fully read response from the service.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Method and URL of the request that produced this response, for diagnostics.
	Method string
	URL    string
}

// DecodeJSON unmarshals the body into target.
func (r *Response) DecodeJSON(target interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("%s %s returned an empty body with status %d", r.Method, r.URL, r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("malformed JSON from %s %s: %w", r.Method, r.URL, err)
	}
	return nil
}

// Search evaluates a JMESPath expression against the JSON body, for example "[].id" or
// "max([].id)". Numbers in the result are float64.
func (r *Response) Search(expr string) (interface{}, error) {
	var data interface{}
	if err := r.DecodeJSON(&data); err != nil {
		return nil, err
	}
	result, err := jmespath.Search(expr, data)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", expr, err)
	}
	return result, nil
}

func (r *Response) String() string {
	if len(r.Body) == 0 {
		return fmt.Sprintf("HTTP %d (empty body)", r.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s", r.StatusCode, r.Body)
}
