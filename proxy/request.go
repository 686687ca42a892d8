package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Request describes a single call against the service: a method and a
// relative URL produced from a template. A Request is built per call and
// must not be reused after execution.
type Request struct {
	Method string
	URL    string

	body        []byte
	contentType string
	codec       *Codec
}

// NewRequest builds a request from a method, a relative URL template and
// positional arguments. Each {n} placeholder is replaced by the formatted
// argument at position n. A leading path separator on the template is
// stripped so the URL joins cleanly onto the base address.
func (c *Client) NewRequest(method, template string, args ...any) *Request {
	rel := strings.TrimPrefix(template, "/")
	for i, arg := range args {
		rel = strings.ReplaceAll(rel, fmt.Sprintf("{%d}", i), formatArgument(arg))
	}
	return &Request{Method: method, URL: rel, codec: c.codec}
}

// formatArgument renders one placeholder value. Times use the round-trip
// RFC 3339 form in their own location; every other kind is stringified and
// percent-encoded.
func formatArgument(arg any) string {
	switch v := arg.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return escapeValue(fmt.Sprint(v))
	}
}

// escapeValue percent-encodes a value for use inside a URL, encoding spaces
// as %20 rather than +.
func escapeValue(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// AddBody serializes v to JSON and attaches it as the request body with
// Content-Type application/json.
func (r *Request) AddBody(v any) error {
	data, err := r.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize request body: %w", err)
	}
	r.body = data
	r.contentType = "application/json"
	return nil
}

// AddParameter appends a query parameter to the request URL, choosing ? or
// & based on whether a query string is already present. The value is
// percent-encoded.
func (r *Request) AddParameter(name, value string) {
	separator := "?"
	if strings.Contains(r.URL, "?") {
		separator = "&"
	}
	r.URL += separator + name + "=" + escapeValue(value)
}
