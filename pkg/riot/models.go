package riot

// Summoner is the resolved identity of a player
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// MatchReference is one entry of a matchlist response. Only GameID and
// Timestamp are needed for scraping; the remaining fields are kept because
// the API returns them and they are cheap to carry.
type MatchReference struct {
	GameID     int64  `json:"gameId"`
	Timestamp  int64  `json:"timestamp"`
	Champion   int    `json:"champion"`
	Queue      int    `json:"queue"`
	Season     int    `json:"season"`
	Role       string `json:"role"`
	Lane       string `json:"lane"`
	PlatformID string `json:"platformId"`
}

// Matchlist is the response of the matchlist-by-account endpoint
type Matchlist struct {
	Matches    []MatchReference `json:"matches"`
	StartIndex int              `json:"startIndex"`
	EndIndex   int              `json:"endIndex"`
	TotalGames int              `json:"totalGames"`
}

// Match is a full match detail record. It is treated as an opaque document:
// the scraper never interprets it beyond handing it to the store, which keys
// it by the gameId and gameCreation fields. Numbers are decoded as
// json.Number so the payload re-encodes without precision loss.
type Match map[string]interface{}

// Timeline is the per-match event log, likewise opaque. A nil Timeline means
// timeline data was never requested; an empty non-nil Timeline means it was
// requested but the API has none for the match.
type Timeline map[string]interface{}
