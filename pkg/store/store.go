// Package store defines the persistence capability the scraper writes
// matches through, and a JSONL file implementation of it.
package store

import "riotscrape/pkg/riot"

// SearchInterval is a time range of match creation timestamps, in epoch
// milliseconds, that still needs to be searched. A nil bound means the search
// is unbounded in that direction: a nil Begin searches indefinitely into the
// past, a nil End searches up to the current time.
type SearchInterval struct {
	Begin *int64
	End   *int64
}

// Millis returns a pointer to v, for building interval bounds
func Millis(v int64) *int64 {
	return &v
}

// Store is the persistence capability for scraped matches. It decides which
// time ranges still need searching, answers whether a match is already known
// and durably records new matches.
type Store interface {
	// SuggestSearchIntervals returns one or more disjoint time ranges to
	// search for the account, ordered by priority. The trivial answer is a
	// single fully unbounded interval.
	SuggestSearchIntervals(accountID string) []SearchInterval

	// HasMatch reports whether a match with this game ID is already
	// persisted. It is called once per candidate match and must be cheap.
	HasMatch(gameID, timestamp int64) bool

	// StoreMatch durably persists the match. The timeline may be nil when
	// timeline data was not requested, or an empty non-nil Timeline when it
	// was requested but unavailable; the two must remain distinguishable
	// after a reload.
	StoreMatch(gameID, timestamp int64, match riot.Match, timeline riot.Timeline) error
}
