package kv

// Status is the four-valued vocabulary the harness observes per call.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusNotFound
	// StatusBatched acknowledges an operation that was appended to the queue
	// but not yet committed; the commit happens on a later call that crosses
	// the batch threshold, or at cleanup.
	StatusBatched
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusBatched:
		return "BATCHED_OK"
	default:
		return "UNKNOWN"
	}
}

// IsOK reports whether the status counts as success in batch reduction.
func (s Status) IsOK() bool {
	return s == StatusOK || s == StatusBatched
}
