// Package scraper walks a player's match history backward through the Riot
// matchlist API in one-week windows and persists every match exactly once
// through a store.Store.
//
// The store decides which time ranges still need searching, so an
// interrupted run picks up where the previous one left off. Progress is
// reported through a ProgressSink, whose return value is also the only
// cancellation mechanism: a sink returning SignalStop ends the scrape early
// without an error.
package scraper
