package viewer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// StatusKind classifies a status message for display.
type StatusKind string

// The kinds of status messages a session posts.
const (
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

const (
	// statusLinger is how long a success or error message stays current.
	statusLinger  = 3 * time.Second
	statusHistory = 32
)

// StatusMessage is one line of user-facing progress.
type StatusMessage struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
	Time    time.Time  `json:"time"`
}

// StatusReport is the current status, if any, plus the most recent messages oldest first.
type StatusReport struct {
	Current *StatusMessage  `json:"current,omitempty"`
	Recent  []StatusMessage `json:"recent"`
}

// statusBoard keeps a bounded history of status messages. A loading message stays
// current until replaced; success and error messages expire after statusLinger.
type statusBoard struct {
	clk clock.Clock

	mu      sync.Mutex
	entries []StatusMessage
}

func newStatusBoard(clk clock.Clock) *statusBoard {
	return &statusBoard{clk: clk}
}

func (b *statusBoard) post(kind StatusKind, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, StatusMessage{Kind: kind, Message: msg, Time: b.clk.Now()})
	if len(b.entries) > statusHistory {
		b.entries = append([]StatusMessage(nil), b.entries[len(b.entries)-statusHistory:]...)
	}
}

func (b *statusBoard) report() StatusReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	report := StatusReport{Recent: append([]StatusMessage{}, b.entries...)}
	if len(b.entries) == 0 {
		return report
	}
	last := b.entries[len(b.entries)-1]
	if last.Kind == StatusLoading || b.clk.Since(last.Time) < statusLinger {
		report.Current = &last
	}
	return report
}
