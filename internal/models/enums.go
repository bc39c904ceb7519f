package models

// CompLevel identifies the stage of a match within an event
type CompLevel string

const (
	CompLevelQual    CompLevel = "qm"
	CompLevelEighth  CompLevel = "ef"
	CompLevelQuarter CompLevel = "qf"
	CompLevelSemi    CompLevel = "sf"
	CompLevelFinal   CompLevel = "f"
)

// MatchStatus represents whether a match has been played
type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "Upcoming"
	MatchCompleted MatchStatus = "Completed"
)

// EventStatus is derived from dates and match completion
type EventStatus string

const (
	EventUpcoming  EventStatus = "Upcoming"
	EventOngoing   EventStatus = "Ongoing"
	EventCompleted EventStatus = "Completed"
)

// Alliance identifies which side of a match a team played on
type Alliance string

const (
	AllianceRed  Alliance = "red"
	AllianceBlue Alliance = "blue"
)

// Winner is the outcome of a completed match
type Winner string

const (
	WinnerRed  Winner = "red"
	WinnerBlue Winner = "blue"
	WinnerTie  Winner = "tie"
)

// EventType classifies FTC events
type EventType string

const (
	EventTypeScrimmage        EventType = "scrimmage"
	EventTypeLeagueMeet       EventType = "league_meet"
	EventTypeQualifier        EventType = "qualifier"
	EventTypeLeagueTournament EventType = "league_tournament"
	EventTypeChampionship     EventType = "championship"
	EventTypeSuperQualifier   EventType = "super_qualifier"
	EventTypeRegionalChamps   EventType = "regional_championship"
	EventTypeFIRSTChamps      EventType = "first_championship"
	EventTypeOffseason        EventType = "offseason"
	EventTypeOther            EventType = "other"
)

// EventTypeFromAPI converts the FTC Events API type string to an EventType
func EventTypeFromAPI(s string) EventType {
	switch s {
	case "Scrimmage":
		return EventTypeScrimmage
	case "LeagueMeet":
		return EventTypeLeagueMeet
	case "Qualifier":
		return EventTypeQualifier
	case "LeagueTournament":
		return EventTypeLeagueTournament
	case "Championship":
		return EventTypeChampionship
	case "SuperQualifier":
		return EventTypeSuperQualifier
	case "RegionalChampionship":
		return EventTypeRegionalChamps
	case "FIRSTChampionship":
		return EventTypeFIRSTChamps
	case "OffSeason":
		return EventTypeOffseason
	default:
		return EventTypeOther
	}
}

// IsOfficial reports whether events of this type count toward season stats
func (t EventType) IsOfficial() bool {
	switch t {
	case EventTypeScrimmage, EventTypeOffseason, EventTypeOther:
		return false
	}
	return true
}
