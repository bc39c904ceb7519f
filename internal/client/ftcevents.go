// Package client implements the FTC Events API v2.0 consumer. All fetches
// are bounded, rate limited, retried on transient failures, and optionally
// served from the response cache.
package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PzmuV1517/FTCinsight/internal/cache"
	"github.com/PzmuV1517/FTCinsight/internal/metrics"
	"github.com/PzmuV1517/FTCinsight/internal/models"
)

// Client is the FTC Events API client
type Client struct {
	baseURL     string
	authHeader  string
	httpClient  *http.Client
	cache       cache.Store
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new FTC Events API client. The API uses Basic auth
// with "<username>:<token>" credentials. store may be a cache.Noop.
func NewClient(baseURL, username, token string, timeout time.Duration, store cache.Store) *Client {
	// Create rate limiter (max 20 concurrent requests)
	rateLimiter := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		rateLimiter <- struct{}{}
	}

	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + token))

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		authHeader:  "Basic " + creds,
		cache:       store,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against the API with retry logic and rate
// limiting, consulting the response cache first when useCache is set.
func (c *Client) get(ctx context.Context, path string, useCache bool) ([]byte, error) {
	if useCache {
		if body, err := c.cache.Get(ctx, path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Cache lookup failed, fetching")
		} else if body != nil {
			metrics.RecordCacheHit()
			return body, nil
		} else {
			metrics.RecordCacheMiss()
		}
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Rate limiting: acquire semaphore
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter:
		}

		body, retryable, err := c.doRequest(ctx, url)
		c.rateLimiter <- struct{}{}

		if err == nil {
			metrics.RecordAPICall(path, "success", time.Since(start).Seconds())
			if setErr := c.cache.Set(ctx, path, body); setErr != nil {
				log.Warn().Err(setErr).Str("path", path).Msg("Failed to cache response")
			}
			return body, nil
		}

		lastErr = err
		if !retryable || attempt == c.maxRetries {
			break
		}
	}

	metrics.RecordAPICall(path, "error", time.Since(start).Seconds())
	return nil, lastErr
}

// doRequest performs a single HTTP round trip. The bool return reports
// whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FTCinsight/1.0")

	log.Debug().Str("url", url).Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, true, fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))

	case http.StatusUnauthorized, http.StatusForbidden:
		// Don't retry auth errors
		return nil, false, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchTeams fetches all teams registered for a season. The listing is
// paginated; every page is fetched.
func (c *Client) FetchTeams(ctx context.Context, season int, useCache bool) ([]*models.Team, error) {
	var out []*models.Team

	for page := 1; ; page++ {
		path := fmt.Sprintf("%d/teams?page=%d", season, page)
		body, err := c.get(ctx, path, useCache)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch teams page %d: %w", page, err)
		}

		var resp struct {
			Teams       []models.TeamInput `json:"teams"`
			PageCurrent int                `json:"pageCurrent"`
			PageTotal   int                `json:"pageTotal"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal teams: %w", err)
		}

		if len(resp.Teams) == 0 {
			break
		}
		for i := range resp.Teams {
			out = append(out, resp.Teams[i].ToTeam())
		}

		if resp.PageCurrent >= resp.PageTotal {
			break
		}
	}

	return out, nil
}

// FetchEvents fetches all events for a season
func (c *Client) FetchEvents(ctx context.Context, season int, useCache bool) ([]*models.Event, error) {
	body, err := c.get(ctx, fmt.Sprintf("%d/events", season), useCache)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	var resp struct {
		Events []models.EventInput `json:"events"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	events := make([]*models.Event, 0, len(resp.Events))
	for i := range resp.Events {
		events = append(events, resp.Events[i].ToEvent(season))
	}
	return events, nil
}

// FetchEventTeams fetches the numbers of teams attending an event
func (c *Client) FetchEventTeams(ctx context.Context, season int, eventCode string, useCache bool) ([]int, error) {
	path := fmt.Sprintf("%d/teams?eventCode=%s", season, eventCode)
	body, err := c.get(ctx, path, useCache)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event teams: %w", err)
	}

	var resp struct {
		Teams []struct {
			TeamNumber int `json:"teamNumber"`
		} `json:"teams"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event teams: %w", err)
	}

	numbers := make([]int, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		numbers = append(numbers, t.TeamNumber)
	}
	return numbers, nil
}

// matchResult is the FTC Events API shape of a match results row
type matchResult struct {
	TournamentLevel string `json:"tournamentLevel"`
	Series          int    `json:"series"`
	MatchNumber     int    `json:"matchNumber"`
	ScoreRedFinal   *int   `json:"scoreRedFinal"`
	ScoreBlueFinal  *int   `json:"scoreBlueFinal"`
	ActualStartTime string `json:"actualStartTime"`
	PostResultTime  string `json:"postResultTime"`
}

// scheduleEntry is the FTC Events API shape of a hybrid schedule row
type scheduleEntry struct {
	Description string `json:"description"`
	MatchNumber int    `json:"matchNumber"`
	Series      int    `json:"series"`
	StartTime   string `json:"startTime"`
	RedScore    *int   `json:"scoreRedFinal"`
	BlueScore   *int   `json:"scoreBlueFinal"`
	Teams       []struct {
		TeamNumber int    `json:"teamNumber"`
		Station    string `json:"station"`
		Surrogate  bool   `json:"surrogate"`
	} `json:"teams"`
}

// FetchEventMatches fetches all matches for an event by merging the hybrid
// qualification and playoff schedules with the match results endpoint.
// Results carry final scores and timing; the schedule carries assignments.
func (c *Client) FetchEventMatches(ctx context.Context, season int, event *models.Event, useCache bool) ([]*models.Match, error) {
	results, err := c.fetchMatchResults(ctx, season, event.Code, useCache)
	if err != nil {
		return nil, err
	}

	var out []*models.Match
	for _, level := range []string{"qual", "playoff"} {
		path := fmt.Sprintf("%d/schedule/%s/%s/hybrid", season, event.Code, level)
		body, err := c.get(ctx, path, useCache)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s schedule: %w", level, err)
		}

		var resp struct {
			Schedule []scheduleEntry `json:"schedule"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s schedule: %w", level, err)
		}

		for i := range resp.Schedule {
			if m := buildMatch(event, level, &resp.Schedule[i], results); m != nil {
				out = append(out, m)
			}
		}
	}

	return out, nil
}

func (c *Client) fetchMatchResults(ctx context.Context, season int, eventCode string, useCache bool) (map[resultKey]*matchResult, error) {
	body, err := c.get(ctx, fmt.Sprintf("%d/matches/%s", season, eventCode), useCache)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match results: %w", err)
	}

	var resp struct {
		Matches []matchResult `json:"matches"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match results: %w", err)
	}

	results := make(map[resultKey]*matchResult, len(resp.Matches))
	for i := range resp.Matches {
		r := &resp.Matches[i]
		results[resultKey{strings.ToUpper(r.TournamentLevel), r.Series, r.MatchNumber}] = r
	}
	return results, nil
}

type resultKey struct {
	level  string
	series int
	number int
}

// buildMatch merges one schedule entry with its result (if played) into a
// canonical Match. Entries with incomplete alliances are dropped.
func buildMatch(event *models.Event, level string, entry *scheduleEntry, results map[resultKey]*matchResult) *models.Match {
	var red, blue []struct {
		Number    int
		Surrogate bool
	}
	for _, t := range entry.Teams {
		slot := struct {
			Number    int
			Surrogate bool
		}{t.TeamNumber, t.Surrogate}
		switch {
		case strings.HasPrefix(t.Station, "Red"):
			red = append(red, slot)
		case strings.HasPrefix(t.Station, "Blue"):
			blue = append(blue, slot)
		}
	}
	if len(red) < 2 || len(blue) < 2 {
		return nil
	}

	compLevel := models.CompLevelQual
	apiLevel := "QUALIFICATION"
	resultSeries := 0
	if level != "qual" {
		// FTC playoffs surface only semifinals and finals
		if strings.Contains(strings.ToLower(entry.Description), "final") {
			compLevel = models.CompLevelFinal
			apiLevel = "FINAL"
		} else {
			compLevel = models.CompLevelSemi
			apiLevel = "SEMIFINAL"
		}
		resultSeries = entry.Series
	}

	series := entry.Series
	if level == "qual" {
		series = 0
	}

	m := &models.Match{
		Key:            models.MatchKey(event.Key, compLevel, series, entry.MatchNumber),
		Event:          event.Key,
		Season:         event.Season,
		Week:           event.Week,
		Elim:           compLevel != models.CompLevelQual,
		CompLevel:      compLevel,
		Series:         series,
		MatchNumber:    entry.MatchNumber,
		Status:         models.MatchUpcoming,
		Red1:           red[0].Number,
		Red2:           red[1].Number,
		RedSurrogate1:  red[0].Surrogate,
		RedSurrogate2:  red[1].Surrogate,
		Blue1:          blue[0].Number,
		Blue2:          blue[1].Number,
		BlueSurrogate1: blue[0].Surrogate,
		BlueSurrogate2: blue[1].Surrogate,
	}

	m.Time = parseTimestamp(entry.StartTime)
	if m.Time == 0 {
		m.Time = event.Time
	}

	redScore, blueScore := entry.RedScore, entry.BlueScore
	if r, ok := results[resultKey{apiLevel, resultSeries, entry.MatchNumber}]; ok {
		redScore, blueScore = r.ScoreRedFinal, r.ScoreBlueFinal
		m.ActualTime = parseTimestamp(r.ActualStartTime)
		m.PostResult = parseTimestamp(r.PostResultTime)
	}

	if redScore != nil && blueScore != nil && *redScore >= 0 && *blueScore >= 0 {
		m.Status = models.MatchCompleted
		m.RedScore = *redScore
		m.BlueScore = *blueScore
		m.Winner = models.WinnerFromScores(m.RedScore, m.BlueScore)
	}

	return m
}

// EventScores maps a match number to its (red, blue) alliance breakdowns
type EventScores map[int][2]models.Breakdown

// FetchEventScores fetches detailed score breakdowns for one tournament
// level ("qual" or "playoff") of an event.
func (c *Client) FetchEventScores(ctx context.Context, season int, eventCode, level string, useCache bool) (EventScores, error) {
	path := fmt.Sprintf("%d/scores/%s/%s", season, eventCode, level)
	body, err := c.get(ctx, path, useCache)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s scores: %w", level, err)
	}

	var resp struct {
		MatchScores []struct {
			MatchNumber int              `json:"matchNumber"`
			Alliances   []map[string]any `json:"alliances"`
		} `json:"matchScores"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s scores: %w", level, err)
	}

	scores := make(EventScores, len(resp.MatchScores))
	for _, ms := range resp.MatchScores {
		var pair [2]models.Breakdown
		for _, alliance := range ms.Alliances {
			name, _ := alliance["alliance"].(string)
			bd := models.ParseBreakdown(season, alliance)
			switch strings.ToLower(name) {
			case "red":
				pair[0] = bd
			case "blue":
				pair[1] = bd
			}
		}
		scores[ms.MatchNumber] = pair
	}
	return scores, nil
}

// FetchEventRankings fetches the qualification rankings at an event
func (c *Client) FetchEventRankings(ctx context.Context, season int, eventCode string, useCache bool) ([]*models.Ranking, error) {
	path := fmt.Sprintf("%d/rankings/%s", season, eventCode)
	body, err := c.get(ctx, path, useCache)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings: %w", err)
	}

	var resp struct {
		Rankings []models.RankingInput `json:"rankings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rankings: %w", err)
	}

	eventKey := fmt.Sprintf("%d_%s", season, eventCode)
	out := make([]*models.Ranking, 0, len(resp.Rankings))
	for i := range resp.Rankings {
		out = append(out, resp.Rankings[i].ToRanking(eventKey))
	}
	return out, nil
}

// parseTimestamp converts an FTC API timestamp ("2024-11-09T09:30:00" or
// similar) to a Unix timestamp, 0 if unparseable.
func parseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999Z07:00", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}
