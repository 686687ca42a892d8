package proxy

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Client executes requests against a single service base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
	codec      *Codec
	logger     zerolog.Logger
	eventLog   EventLog
	header     http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the shared per-address HTTP client, mainly for
// tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithEventLog installs the sink that receives the raw error behind every
// unexpected failure.
func WithEventLog(eventLog EventLog) Option {
	return func(c *Client) { c.eventLog = eventLog }
}

// WithCodec replaces the default JSON codec, e.g. to plug in a TypeResolver.
func WithCodec(codec *Codec) Option {
	return func(c *Client) { c.codec = codec }
}

// WithHeader adds a header sent with every request, such as an API key.
func WithHeader(name, value string) Option {
	return func(c *Client) { c.header.Set(name, value) }
}

// NewClient creates a proxy client for the given base address. The address
// is normalized to end with a path separator; all clients created for the
// same address share one underlying transport.
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("service base URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := &Client{
		baseURL:  baseURL,
		codec:    NewCodec(nil),
		logger:   logger,
		eventLog: NopEventLog{},
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = sharedHTTPClient(baseURL)
	}

	return client, nil
}

// BaseURL returns the normalized base address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Execute sends the request and discards the response. The response body is
// drained and closed on every path so the connection returns to the pool.
func (c *Client) Execute(ctx context.Context, req *Request) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Execute sends the request and deserializes the JSON response body into T.
// An empty body yields the zero value of T. Classified failures pass
// through unchanged; anything else is logged once, handed to the event log,
// and surfaced as ErrUnexpected.
func Execute[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var zero T

	resp, err := c.send(ctx, req)
	if err != nil {
		if isClassified(err) {
			return zero, err
		}
		return zero, c.unexpected(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, c.unexpected(err)
	}

	var result T
	if err := c.codec.Unmarshal(data, &result); err != nil {
		return zero, c.unexpected(err)
	}
	return result, nil
}

// resultEnvelope mirrors the {result, errorMessage} wrapper used by some
// endpoints.
type resultEnvelope[T any] struct {
	Result       T      `json:"result"`
	ErrorMessage string `json:"errorMessage"`
}

// ExecuteResult runs the request against the result envelope and returns
// only its result field.
func ExecuteResult[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	envelope, err := Execute[resultEnvelope[T]](ctx, c, req)
	if err != nil {
		var zero T
		return zero, err
	}
	if envelope.ErrorMessage != "" {
		c.logger.Debug().
			Str("error_message", envelope.ErrorMessage).
			Msg("Service attached an error message to the result envelope")
	}
	return envelope.Result, nil
}

// unexpected records the real cause and returns the generic failure the
// caller sees.
func (c *Client) unexpected(err error) error {
	c.logger.Error().Err(err).Msg("Unexpected error while executing service request")
	c.eventLog.LogError(err)
	return ErrUnexpected
}

// errorBody is the structured body the service attaches to internal server
// errors.
type errorBody struct {
	Detail string `json:"detail"`
}

// send performs the round trip and classifies the outcome. On a nil error
// the caller owns the response and must close its body.
func (c *Client) send(ctx context.Context, req *Request) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	} else if req.Method != http.MethodGet {
		// Some HTTP stacks reject body-less non-GET requests outright.
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.URL, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for name, values := range c.header {
		httpReq.Header[name] = append([]string(nil), values...)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if message, ok := connectionFailure(err); ok {
			return nil, &TargetUnreachableError{Message: message, cause: err}
		}
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusInternalServerError:
		var errBody errorBody
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr == nil {
			// A malformed error body still classifies as a server error,
			// just without a detail message.
			_ = c.codec.Unmarshal(data, &errBody)
		}
		return nil, NewServerError(errBody.Detail)
	case resp.StatusCode >= 400:
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, NewHTTPStatusError(resp.StatusCode, reasonPhrase(resp))
	}

	return resp, nil
}

// reasonPhrase extracts the server's reason phrase, falling back to the
// canonical text for the status code.
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

// connectionFailure reports whether err is a transport-level failure to
// reach the target (DNS, connect, proxy or TLS trust problems) and, if so,
// returns the innermost message.
func connectionFailure(err error) (string, bool) {
	var (
		dnsErr      *net.DNSError
		opErr       *net.OpError
		verifyErr   *tls.CertificateVerificationError
		authErr     x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.As(err, &verifyErr),
		errors.As(err, &authErr),
		errors.As(err, &hostErr),
		errors.As(err, &invalidCert):
		return innermost(err).Error(), true
	}
	return "", false
}

// innermost walks the Unwrap chain to the original cause.
func innermost(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
