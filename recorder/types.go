package recorder

import "time"

// Recording is a single recorded program on the service. Identity follows
// the service-assigned RecordingID; every other field is descriptive.
type Recording struct {
	RecordingID        string     `json:"recordingId"`
	ScheduleID         string     `json:"scheduleId,omitempty"`
	Title              string     `json:"title"`
	SubTitle           string     `json:"subTitle,omitempty"`
	ChannelDisplayName string     `json:"channelDisplayName"`
	ProgramStartTime   time.Time  `json:"programStartTime"`
	ProgramStopTime    time.Time  `json:"programStopTime"`
	RecordingFileName  string     `json:"recordingFileName,omitempty"`
	FileSize           int64      `json:"fileSize,omitempty"`
	LastWatchedTime    *time.Time `json:"lastWatchedTime,omitempty"`
	KeepUntil          *time.Time `json:"keepUntil,omitempty"`
}

// Equal reports whether two recordings refer to the same entry on the
// service.
func (r Recording) Equal(other Recording) bool {
	return r.RecordingID == other.RecordingID
}

// Duration returns the scheduled program length.
func (r Recording) Duration() time.Duration {
	return r.ProgramStopTime.Sub(r.ProgramStartTime)
}

// Watched reports whether the recording has ever been played back.
func (r Recording) Watched() bool {
	return r.LastWatchedTime != nil && !r.LastWatchedTime.IsZero()
}

// Schedule describes a recording to be created.
type Schedule struct {
	ChannelID          string    `json:"channelId"`
	Title              string    `json:"title"`
	StartTime          time.Time `json:"startTime"`
	StopTime           time.Time `json:"stopTime"`
	PrePaddingSeconds  int       `json:"prePaddingSeconds,omitempty"`
	PostPaddingSeconds int       `json:"postPaddingSeconds,omitempty"`
	KeepUntilDays      int       `json:"keepUntilDays,omitempty"`
}

// Tuner is a capture device known to the service.
type Tuner struct {
	TunerID  string `json:"tunerId"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	InUse    bool   `json:"inUse"`
	Priority int    `json:"priority"`
}

// DiskStatus reports storage headroom on the recorder.
type DiskStatus struct {
	TotalBytes int64 `json:"totalBytes"`
	FreeBytes  int64 `json:"freeBytes"`
}

// FreePercent returns the free share of the recording volume in percent.
func (d DiskStatus) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}
