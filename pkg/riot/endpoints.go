package riot

import (
	"fmt"
	"net/url"
)

// platformHosts maps the region shorthands accepted on the command line to
// the Riot platform routing hosts.
var platformHosts = map[string]string{
	"br":   "br1.api.riotgames.com",
	"eune": "eun1.api.riotgames.com",
	"euw":  "euw1.api.riotgames.com",
	"jp":   "jp1.api.riotgames.com",
	"kr":   "kr.api.riotgames.com",
	"lan":  "la1.api.riotgames.com",
	"las":  "la2.api.riotgames.com",
	"na":   "na1.api.riotgames.com",
	"oce":  "oc1.api.riotgames.com",
	"ru":   "ru.api.riotgames.com",
	"tr":   "tr1.api.riotgames.com",
}

// BaseURLForRegion returns the API base URL for a region shorthand. Unknown
// values are assumed to already be platform IDs (e.g. "euw1").
func BaseURLForRegion(region string) string {
	if host, ok := platformHosts[region]; ok {
		return "https://" + host
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", region)
}

// GetSummonerURL builds the summoner-by-name endpoint URL
func GetSummonerURL(baseURL, name string) string {
	return fmt.Sprintf("%s/lol/summoner/v4/summoners/by-name/%s", baseURL, url.PathEscape(name))
}

// GetMatchlistURL builds the matchlist endpoint URL for a creation-time range
func GetMatchlistURL(baseURL, accountID string, beginTime, endTime int64) string {
	return fmt.Sprintf("%s/lol/match/v4/matchlists/by-account/%s?beginTime=%d&endTime=%d",
		baseURL, url.PathEscape(accountID), beginTime, endTime)
}

// GetMatchURL builds the match detail endpoint URL
func GetMatchURL(baseURL string, gameID int64) string {
	return fmt.Sprintf("%s/lol/match/v4/matches/%d", baseURL, gameID)
}

// GetTimelineURL builds the match timeline endpoint URL
func GetTimelineURL(baseURL string, gameID int64) string {
	return fmt.Sprintf("%s/lol/match/v4/timelines/by-match/%d", baseURL, gameID)
}
