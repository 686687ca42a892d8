package proxy

// EventLog receives the raw error behind every failure the pipeline reports
// as ErrUnexpected. Implementations typically forward to the operating
// system event log or an external error tracker.
type EventLog interface {
	LogError(err error)
}

// NopEventLog discards all events. It is the default when no event log is
// configured.
type NopEventLog struct{}

// LogError implements EventLog.
func (NopEventLog) LogError(error) {}
