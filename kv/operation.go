package kv

// OpKind is the closed set of buffered operation variants. The executor's
// dispatch is an exhaustive switch with no extension point.
type OpKind int

const (
	OpRead OpKind = iota
	OpInsert
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpRead:
		return "READ"
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Op is one user-requested operation awaiting commit. Immutable after
// construction: it is appended to the queue, consumed exactly once by the
// executor, then discarded.
type Op struct {
	Kind OpKind
	// Table is kept for diagnostics; addressing is fully baked into Key.
	Table string
	Key   []byte
	// Fields is the READ projection; empty means all fields.
	Fields []string
	// Values is the INSERT payload or UPDATE overlay.
	Values map[string]string
}

// Queue is the ordered buffer of pending operations. It is owned by exactly
// one session and never shared across goroutines, so it needs no locking.
type Queue struct {
	ops []*Op
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Append(op *Op) {
	q.ops = append(q.ops, op)
}

func (q *Queue) Len() int {
	return len(q.ops)
}

// ShouldFlush reports whether the buffer has reached the batch threshold.
// A non-positive threshold disables batching: every appended operation
// triggers a flush.
func (q *Queue) ShouldFlush(threshold int) bool {
	if threshold <= 0 {
		return len(q.ops) >= 1
	}
	return len(q.ops) >= threshold
}

// DrainAll returns the buffered sequence in arrival order and empties the
// queue. The caller must drain before executing so a failed batch is never
// replayed by accident.
func (q *Queue) DrainAll() []*Op {
	ops := q.ops
	q.ops = nil
	return ops
}
