package recorder

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvalheim/dvrctl/proxy"
)

// Client wraps the proxy pipeline with typed recorder service operations.
type Client struct {
	proxy  *proxy.Client
	logger zerolog.Logger
}

// NewClient creates a new recorder client and verifies the connection.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...proxy.Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: recorder URL is required", ErrInvalidConfig)
	}

	if apiKey != "" {
		opts = append([]proxy.Option{proxy.WithHeader("X-Api-Key", apiKey)}, opts...)
	}

	proxyClient, err := proxy.NewClient(baseURL, logger, opts...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		proxy:  proxyClient,
		logger: logger,
	}

	// Test the connection
	if _, err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to recorder service: %w", err)
	}

	return client, nil
}

// Ping returns the API version reported by the service.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req := c.proxy.NewRequest(http.MethodGet, "core/ping")
	return proxy.ExecuteResult[int](ctx, c.proxy, req)
}

// KeepAlive signals the service that this client is still interested in its
// sessions.
func (c *Client) KeepAlive(ctx context.Context) error {
	req := c.proxy.NewRequest(http.MethodPut, "core/keepalive")
	return c.proxy.Execute(ctx, req)
}

// GetRecordings retrieves all recordings from the service.
func (c *Client) GetRecordings(ctx context.Context) ([]Recording, error) {
	req := c.proxy.NewRequest(http.MethodGet, "recordings")
	recordings, err := proxy.ExecuteResult[[]Recording](ctx, c.proxy, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Msgf("Retrieved %d recordings from recorder service", len(recordings))
	return recordings, nil
}

// GetRecordingsSince retrieves recordings whose program started at or after
// the given instant.
func (c *Client) GetRecordingsSince(ctx context.Context, since time.Time) ([]Recording, error) {
	req := c.proxy.NewRequest(http.MethodGet, "recordings/since/{0}", since)
	return proxy.ExecuteResult[[]Recording](ctx, c.proxy, req)
}

// GetRecordingByID retrieves the full detail record for one recording.
func (c *Client) GetRecordingByID(ctx context.Context, recordingID string) (Recording, error) {
	req := c.proxy.NewRequest(http.MethodGet, "recordings/{0}", recordingID)
	return proxy.Execute[Recording](ctx, c.proxy, req)
}

// ScheduleRecording asks the service to create a recording and returns the
// entry it created.
func (c *Client) ScheduleRecording(ctx context.Context, schedule Schedule) (Recording, error) {
	req := c.proxy.NewRequest(http.MethodPost, "recordings")
	if err := req.AddBody(schedule); err != nil {
		return Recording{}, err
	}

	recording, err := proxy.Execute[Recording](ctx, c.proxy, req)
	if err != nil {
		return Recording{}, err
	}

	c.logger.Info().
		Str("recording_id", recording.RecordingID).
		Str("title", schedule.Title).
		Msg("Scheduled recording")
	return recording, nil
}

// DeleteRecording removes a recording from the service, optionally deleting
// the file on disk as well.
func (c *Client) DeleteRecording(ctx context.Context, recordingID string, deleteFile bool) error {
	req := c.proxy.NewRequest(http.MethodPost, "recordings/{0}/delete", recordingID)
	req.AddParameter("deleteFile", strconv.FormatBool(deleteFile))

	if err := c.proxy.Execute(ctx, req); err != nil {
		return err
	}

	c.logger.Info().
		Str("recording_id", recordingID).
		Bool("delete_file", deleteFile).
		Msg("Successfully deleted recording")
	return nil
}

// GetTuners retrieves the capture devices known to the service.
func (c *Client) GetTuners(ctx context.Context) ([]Tuner, error) {
	req := c.proxy.NewRequest(http.MethodGet, "tuners")
	return proxy.ExecuteResult[[]Tuner](ctx, c.proxy, req)
}

// SetTunerEnabled enables or disables a capture device.
func (c *Client) SetTunerEnabled(ctx context.Context, tunerID string, enabled bool) error {
	req := c.proxy.NewRequest(http.MethodPost, "tuners/{0}/enabled/{1}", tunerID, enabled)
	if err := c.proxy.Execute(ctx, req); err != nil {
		return err
	}

	c.logger.Info().
		Str("tuner_id", tunerID).
		Bool("enabled", enabled).
		Msg("Updated tuner state")
	return nil
}

// GetDiskStatus reports storage headroom on the recorder.
func (c *Client) GetDiskStatus(ctx context.Context) (DiskStatus, error) {
	req := c.proxy.NewRequest(http.MethodGet, "status/disk")
	return proxy.Execute[DiskStatus](ctx, c.proxy, req)
}
