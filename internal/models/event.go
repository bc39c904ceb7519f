package models

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Event represents one FTC competition event within a season.
// Key is "<season>_<code>". Status is derived, not fetched; see DeriveEventStatus.
type Event struct {
	Key        string      `db:"key"`
	Season     int         `db:"year"`
	Code       string      `db:"event_code"`
	Name       string      `db:"name"`
	Country    string      `db:"country"`
	State      string      `db:"state"`
	City       string      `db:"city"`
	Venue      string      `db:"venue"`
	Region     string      `db:"region"`
	LeagueCode string      `db:"league_code"`
	StartDate  string      `db:"start_date"` // YYYY-MM-DD, may be empty
	EndDate    string      `db:"end_date"`
	Time       int64       `db:"time"` // unix timestamp of the start date
	Week       int         `db:"week"`
	Type       EventType   `db:"type"`
	Status     EventStatus `db:"status"`
	Website    string      `db:"website"`
	TeamCount  int         `db:"team_count"`
	MatchCount int         `db:"match_count"`
}

// EventInput is the FTC Events API shape for an event listing entry
type EventInput struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	StateProv  string `json:"stateprov"`
	City       string `json:"city"`
	Venue      string `json:"venue"`
	RegionCode string `json:"regionCode"`
	LeagueCode string `json:"leagueCode"`
	Type       string `json:"type"`
	DateStart  string `json:"dateStart"`
	DateEnd    string `json:"dateEnd"`
	Website    string `json:"website"`
	Published  bool   `json:"published"`
}

// ToEvent converts EventInput to the canonical Event record
func (ei *EventInput) ToEvent(season int) *Event {
	start := datePart(ei.DateStart)
	return &Event{
		Key:        fmt.Sprintf("%d_%s", season, ei.Code),
		Season:     season,
		Code:       ei.Code,
		Name:       ei.Name,
		Country:    ei.Country,
		State:      ei.StateProv,
		City:       ei.City,
		Venue:      ei.Venue,
		Region:     ei.RegionCode,
		LeagueCode: ei.LeagueCode,
		StartDate:  start,
		EndDate:    datePart(ei.DateEnd),
		Time:       dateTimestamp(start),
		Week:       EventWeek(season, start),
		Type:       EventTypeFromAPI(ei.Type),
		Status:     EventUpcoming,
		Website:    ei.Website,
	}
}

// EventWeek approximates the season week from the event start date.
// The FTC season kicks off in early September; pre-season events are week 0.
func EventWeek(season int, startDate string) int {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0
	}
	kickoff := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
	if start.Before(kickoff) {
		return 0
	}
	week := int(start.Sub(kickoff).Hours()/(24*7)) + 1
	if week > 52 {
		week = 52
	}
	return week
}

// DeriveEventStatus computes an event's status from its dates, falling back
// to the match completion ratio when dates don't decide it.
//
// A past start date with no parseable end date yields Completed even with
// zero matches played, matching the upstream feed. See DESIGN.md.
func DeriveEventStatus(e *Event, matches []*Match, now time.Time) EventStatus {
	today := now.Truncate(24 * time.Hour)

	start, startErr := time.Parse(dateLayout, e.StartDate)
	end, endErr := time.Parse(dateLayout, e.EndDate)

	if endErr == nil && end.Before(today) {
		return EventCompleted
	}
	if startErr == nil && today.Before(start) {
		return EventUpcoming
	}
	if startErr == nil && endErr != nil && start.Before(today) {
		return EventCompleted
	}

	return statusFromMatches(matches)
}

func statusFromMatches(matches []*Match) EventStatus {
	if len(matches) == 0 {
		return EventUpcoming
	}

	completed := 0
	finals := false
	for _, m := range matches {
		if m.Completed() {
			completed++
		}
		if m.CompLevel == CompLevelFinal {
			finals = true
		}
	}

	switch {
	case completed == 0:
		return EventUpcoming
	case completed < len(matches) || !finals:
		return EventOngoing
	default:
		return EventCompleted
	}
}

func datePart(s string) string {
	if len(s) >= len(dateLayout) {
		return s[:len(dateLayout)]
	}
	return s
}

func dateTimestamp(date string) int64 {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}
	return t.Unix()
}
