package recorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(result any) []byte {
	data, _ := json.Marshal(map[string]any{"result": result})
	return data
}

// newTestService spins up a recorder service stub with the routes the
// client touches.
func newTestService(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()

	if mux == nil {
		mux = http.NewServeMux()
	}
	// Every client construction pings first.
	mux.HandleFunc("/core/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelope(5))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	t.Run("missing URL", func(t *testing.T) {
		_, err := NewClient("", "key", zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("connects and pings", func(t *testing.T) {
		var gotAPIKey string
		mux := http.NewServeMux()
		server := newTestService(t, mux)
		mux.HandleFunc("/recordings", func(w http.ResponseWriter, r *http.Request) {
			gotAPIKey = r.Header.Get("X-Api-Key")
			_, _ = w.Write(envelope([]Recording{}))
		})

		client, err := NewClient(server.URL, "test-key", zerolog.Nop())
		require.NoError(t, err)

		_, err = client.GetRecordings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "test-key", gotAPIKey)
	})

	t.Run("unreachable service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		baseURL := server.URL
		server.Close()

		_, err := NewClient(baseURL, "key", zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to recorder service")
	})
}

func TestPing(t *testing.T) {
	server := newTestService(t, nil)

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	version, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, version)
}

func TestGetRecordings(t *testing.T) {
	recordings := []Recording{
		{RecordingID: "rec-1", Title: "Evening News", ChannelDisplayName: "One"},
		{RecordingID: "rec-2", Title: "Late Movie", ChannelDisplayName: "Two"},
	}

	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelope(recordings))
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	got, err := client.GetRecordings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(recordings[0]))
	assert.Equal(t, "Late Movie", got[1].Title)
}

func TestGetRecordingsSince(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings/since/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(envelope([]Recording{}))
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	since := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)
	_, err = client.GetRecordingsSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, "/recordings/since/2026-03-01T20:30:00Z", gotPath)
}

func TestGetRecordingByID(t *testing.T) {
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings/rec-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Recording{RecordingID: "rec-1", Title: "Evening News"})
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	rec, err := client.GetRecordingByID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Evening News", rec.Title)
}

func TestScheduleRecording(t *testing.T) {
	var gotBody Schedule
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(Recording{RecordingID: "rec-9", Title: gotBody.Title})
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	schedule := Schedule{
		ChannelID: "ch-1",
		Title:     "Evening News",
		StartTime: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		StopTime:  time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC),
	}
	rec, err := client.ScheduleRecording(context.Background(), schedule)
	require.NoError(t, err)
	assert.Equal(t, "rec-9", rec.RecordingID)
	assert.Equal(t, "Evening News", gotBody.Title)
}

func TestDeleteRecording(t *testing.T) {
	var gotMethod, gotQuery string
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings/rec-1/delete", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, client.DeleteRecording(context.Background(), "rec-1", true))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "deleteFile=true", gotQuery)
}

func TestKeepAlive(t *testing.T) {
	var gotMethod string
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/core/keepalive", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, client.KeepAlive(context.Background()))
	assert.Equal(t, http.MethodPut, gotMethod)
}

func TestGetTunersAndSetEnabled(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/tuners", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelope([]Tuner{{TunerID: "tuner-1", Name: "DVB-C 1", Enabled: true}}))
	})
	mux.HandleFunc("/tuners/tuner-1/enabled/false", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	tuners, err := client.GetTuners(context.Background())
	require.NoError(t, err)
	require.Len(t, tuners, 1)
	assert.Equal(t, "DVB-C 1", tuners[0].Name)

	require.NoError(t, client.SetTunerEnabled(context.Background(), "tuner-1", false))
	assert.Equal(t, "/tuners/tuner-1/enabled/false", gotPath)
}

func TestIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	_, err = client.GetRecordingByID(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestEnrichRecordings(t *testing.T) {
	var detailCalls atomic.Int32
	mux := http.NewServeMux()
	server := newTestService(t, mux)
	mux.HandleFunc("/recordings/", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		id := strings.TrimPrefix(r.URL.Path, "/recordings/")
		if id == "rec-2" {
			// One bad record must not sink the batch.
			http.Error(w, "boom", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(Recording{RecordingID: id, Title: "Detail " + id, FileSize: 100})
	})

	client, err := NewClient(server.URL, "", zerolog.Nop())
	require.NoError(t, err)

	recordings := []Recording{
		{RecordingID: "rec-1", Title: "Summary 1"},
		{RecordingID: "rec-2", Title: "Summary 2"},
		{RecordingID: "rec-3", Title: "Summary 3"},
	}
	require.NoError(t, client.EnrichRecordings(context.Background(), recordings))

	assert.Equal(t, int32(3), detailCalls.Load())
	assert.Equal(t, "Detail rec-1", recordings[0].Title)
	assert.Equal(t, "Summary 2", recordings[1].Title)
	assert.Equal(t, "Detail rec-3", recordings[2].Title)
}

func TestRecordingEqual(t *testing.T) {
	a := Recording{RecordingID: "rec-1", Title: "Old title"}
	b := Recording{RecordingID: "rec-1", Title: "New title"}
	c := Recording{RecordingID: "rec-2", Title: "Old title"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRecordingWatchedAndDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	stop := start.Add(90 * time.Minute)
	watched := start.Add(24 * time.Hour)

	rec := Recording{ProgramStartTime: start, ProgramStopTime: stop}
	assert.Equal(t, 90*time.Minute, rec.Duration())
	assert.False(t, rec.Watched())

	rec.LastWatchedTime = &watched
	assert.True(t, rec.Watched())
}
