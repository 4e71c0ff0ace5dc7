// Package riot provides a minimal client for the Riot Games League of
// Legends v4 API. It covers the four operations the scraper needs: resolving
// a summoner by name, listing match references in a time range, fetching
// full match details and fetching match timelines.
//
// The client paces its own requests with a token bucket so that callers can
// issue calls back to back without tracking the API rate budget themselves.
package riot
