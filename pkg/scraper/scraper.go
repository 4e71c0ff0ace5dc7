package scraper

import (
	"fmt"
	"sort"
	"time"

	"riotscrape/pkg/logger"
	"riotscrape/pkg/riot"
	"riotscrape/pkg/store"
)

// The matchlist endpoint caps a query's time range at one week, so history
// is scanned in chunks of this size.
const oneWeekMillis = int64(7 * 24 * 60 * 60 * 1000)

// RiotAPI defines the API operations the scraper consumes. *riot.Client
// satisfies it; tests substitute a fake.
type RiotAPI interface {
	SummonerByName(region, name string) (*riot.Summoner, error)
	MatchlistByAccount(region, accountID string, beginTime, endTime int64) (*riot.Matchlist, error)
	MatchByID(region string, gameID int64) (riot.Match, error)
	TimelineByMatch(region string, gameID int64) (riot.Timeline, error)
}

// Options configures a scrape run
type Options struct {
	// Region is the platform the summoner plays on (e.g. "euw").
	Region string
	// EmptyWeeksToStop is how many consecutive empty windows end the scan of
	// an interval. Defaults to 10.
	EmptyWeeksToStop int
	// WithTimeline also fetches the timeline document for every new match.
	WithTimeline bool
}

// Scraper drives the backward window scan over a player's match history
type Scraper struct {
	api    RiotAPI
	store  store.Store
	sink   ProgressSink
	opts   Options
	logger logger.Logger

	// now is injectable so tests can pin the wall clock.
	now func() time.Time
}

// New creates a Scraper. A nil sink falls back to the ConsoleSink.
func New(api RiotAPI, st store.Store, sink ProgressSink, opts Options) *Scraper {
	if sink == nil {
		sink = &ConsoleSink{}
	}
	if opts.EmptyWeeksToStop <= 0 {
		opts.EmptyWeeksToStop = 10
	}

	return &Scraper{
		api:    api,
		store:  st,
		sink:   sink,
		opts:   opts,
		logger: logger.GetLogger(),
		now:    time.Now,
	}
}

// Run scrapes the match history of the named summoner into the store. It
// returns true when the scrape ran to completion and false when the progress
// sink stopped it early; any API or store failure other than an empty
// matchlist window aborts the run with an error.
func (s *Scraper) Run(summonerName string) (bool, error) {
	summoner, err := s.api.SummonerByName(s.opts.Region, summonerName)
	if err != nil {
		return false, fmt.Errorf("failed to resolve summoner %q: %w", summonerName, err)
	}

	s.logger.InfoWithFields("summoner resolved", map[string]interface{}{
		"summoner":   summoner.Name,
		"account_id": summoner.AccountID,
		"region":     s.opts.Region,
	})

	aborted := false
	for _, interval := range s.store.SuggestSearchIntervals(summoner.AccountID) {
		if aborted {
			break
		}
		if err := s.scanInterval(summoner.AccountID, interval, &aborted); err != nil {
			return false, err
		}
	}

	if aborted {
		s.logger.Info("scrape stopped by progress sink")
		return false, nil
	}
	return true, nil
}

// scanInterval walks one search interval backward in one-week windows until
// enough consecutive windows come back empty. The interval's upper bound
// shrinks to each window's start as the window is consumed, whether or not
// it held matches.
func (s *Scraper) scanInterval(accountID string, interval store.SearchInterval, aborted *bool) error {
	upper := int64(0)
	if interval.End != nil {
		upper = *interval.End
	} else {
		upper = s.now().UnixMilli()
	}

	s.logger.DebugWithFields("scanning interval", map[string]interface{}{
		"account_id": accountID,
		"upper":      upper,
		"bounded":    interval.Begin != nil,
	})

	emptyWeeks := 0
	for emptyWeeks < s.opts.EmptyWeeksToStop {
		begin := upper - oneWeekMillis
		if interval.Begin != nil && begin < *interval.Begin {
			begin = *interval.Begin
		}

		matches, err := s.queryWindow(accountID, begin, upper)
		if err != nil {
			return err
		}
		upper = begin

		if len(matches) == 0 {
			emptyWeeks++
			continue
		}
		emptyWeeks = 0

		// Most recent first, so new matches always stay contiguous with the
		// ones a continuous store already holds.
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Timestamp > matches[j].Timestamp
		})

		if s.sink.Progress(Event{Kind: EventMatchlist, WindowBegin: begin, MatchCount: len(matches)}) == SignalStop {
			*aborted = true
			return nil
		}

		if err := s.fetchBatch(matches, aborted); err != nil {
			return err
		}
		if *aborted {
			return nil
		}
	}
	return nil
}

// queryWindow lists match references created within [begin, end]. A "not
// found" response means the window simply holds no matches.
func (s *Scraper) queryWindow(accountID string, begin, end int64) ([]riot.MatchReference, error) {
	matchlist, err := s.api.MatchlistByAccount(s.opts.Region, accountID, begin, end)
	if err != nil {
		if riot.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("matchlist query failed for window [%d, %d]: %w", begin, end, err)
	}
	return matchlist.Matches, nil
}

// fetchBatch fetches and stores every match of a window that the store does
// not already have, in the given order.
func (s *Scraper) fetchBatch(matches []riot.MatchReference, aborted *bool) error {
	for index, ref := range matches {
		if s.store.HasMatch(ref.GameID, ref.Timestamp) {
			continue
		}

		if s.sink.Progress(Event{Kind: EventMatch, MatchIndex: index, MatchCount: len(matches)}) == SignalStop {
			*aborted = true
			return nil
		}

		match, err := s.api.MatchByID(s.opts.Region, ref.GameID)
		if err != nil {
			return fmt.Errorf("failed to fetch match %d: %w", ref.GameID, err)
		}

		var timeline riot.Timeline
		if s.opts.WithTimeline {
			timeline, err = s.api.TimelineByMatch(s.opts.Region, ref.GameID)
			if err != nil {
				if !riot.IsNotFound(err) {
					return fmt.Errorf("failed to fetch timeline for match %d: %w", ref.GameID, err)
				}
				// No timeline exists for this match: record it as requested
				// but unavailable, distinct from never requested.
				timeline = riot.Timeline{}
			} else if timeline == nil {
				timeline = riot.Timeline{}
			}
		}

		if err := s.store.StoreMatch(ref.GameID, ref.Timestamp, match, timeline); err != nil {
			return fmt.Errorf("failed to store match %d: %w", ref.GameID, err)
		}

		s.logger.DebugWithFields("match stored", map[string]interface{}{
			"game_id":   ref.GameID,
			"timestamp": ref.Timestamp,
		})
	}
	return nil
}
