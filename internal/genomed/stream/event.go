package stream

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventLines    EventType = "lines"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// LineBatch is an ordered run of complete lines extracted from one raw chunk,
// plus the running line count at the time of emission.
type LineBatch struct {
	Lines     []string `json:"lines"`
	LineCount int64    `json:"lineCount"`
}

// Progress is a byte-level progress snapshot. Percent is an integer 0-100.
type Progress struct {
	Percent   int   `json:"progress"`
	TotalRead int64 `json:"totalRead"`
	FileSize  int64 `json:"fileSize"`
}

// Completion carries the final aggregate counts of a finished session.
type Completion struct {
	TotalLines int64 `json:"totalLines"`
	TotalBytes int64 `json:"totalBytes"`
}

// Event is a single notification from a streaming session. Exactly one of the
// payload fields is set, selected by Type. The last event of a session is
// always EventComplete or EventError; the channel is closed after it.
type Event struct {
	Type     EventType
	Batch    *LineBatch
	Progress *Progress
	Done     *Completion
	Err      error
}
