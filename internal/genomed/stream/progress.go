package stream

import "math"

// ProgressReporter derives integer-percentage progress from bytes consumed.
// Reported percentages never decrease within a session.
type ProgressReporter struct {
	total int64
	last  int
}

func NewProgressReporter(total int64) *ProgressReporter {
	return &ProgressReporter{total: total}
}

// Report returns a snapshot for the given consumed byte count.
func (p *ProgressReporter) Report(consumed int64) Progress {
	percent := 100
	if p.total > 0 {
		percent = int(math.Round(float64(consumed) / float64(p.total) * 100))
	}

	if percent > 100 {
		percent = 100
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent

	return Progress{
		Percent:   percent,
		TotalRead: consumed,
		FileSize:  p.total,
	}
}
