package scraper

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Signal is a progress sink's verdict on whether scraping should continue.
// The zero value means the sink has no opinion; only an explicit SignalStop
// cancels the scrape, so a sink that forgets to return a verdict never
// aborts it by accident.
type Signal int

const (
	// SignalNone expresses no opinion; scraping continues.
	SignalNone Signal = iota
	// SignalContinue explicitly requests that scraping continue.
	SignalContinue
	// SignalStop requests that the scrape stop as soon as possible.
	SignalStop
)

// EventKind identifies the point in the scrape an event was emitted from
type EventKind string

const (
	// EventMatchlist is emitted after a window query returned matches.
	EventMatchlist EventKind = "matchlist"
	// EventMatch is emitted before an individual match is fetched.
	EventMatch EventKind = "match"
)

// Event carries the payload of a progress notification. WindowBegin is set
// for matchlist events, MatchIndex for match events; MatchCount is the batch
// size in both cases.
type Event struct {
	Kind        EventKind
	WindowBegin int64
	MatchIndex  int
	MatchCount  int
}

// ProgressSink receives progress events synchronously during a scrape and
// may cancel it through its return value.
type ProgressSink interface {
	Progress(event Event) Signal
}

// SinkFunc adapts a plain function to the ProgressSink interface
type SinkFunc func(Event) Signal

// Progress implements ProgressSink
func (f SinkFunc) Progress(event Event) Signal {
	return f(event)
}

// ConsoleSink is the default sink: it prints human-readable progress lines
// and never cancels.
type ConsoleSink struct {
	// Out receives the progress lines; os.Stdout when nil.
	Out io.Writer
}

// Progress implements ProgressSink
func (s *ConsoleSink) Progress(event Event) Signal {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	switch event.Kind {
	case EventMatchlist:
		week := time.UnixMilli(event.WindowBegin)
		fmt.Fprintf(out, "found %d matches in week of %s\n", event.MatchCount, week.Format("2006-01-02"))
	case EventMatch:
		fmt.Fprintf(out, "  downloading match %d/%d\n", event.MatchIndex+1, event.MatchCount)
	}
	return SignalContinue
}
