package models

import "fmt"

// Team represents an FTC team. Identity is the team number; team records are
// refreshed once per season fetch and treated as immutable within a run.
type Team struct {
	Number     int    `db:"team"`
	Name       string `db:"name"`
	Country    string `db:"country"`
	State      string `db:"state"`
	City       string `db:"city"`
	School     string `db:"school_name"`
	Website    string `db:"website"`
	Region     string `db:"region"`
	RookieYear int    `db:"rookie_year"`
	Active     bool   `db:"active"`
}

// DisplayName returns the team name, falling back to "Team <number>"
func (t *Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("Team %d", t.Number)
}

// TeamInput is the FTC Events API shape for a team listing entry
type TeamInput struct {
	TeamNumber int    `json:"teamNumber"`
	NameShort  string `json:"nameShort"`
	NameFull   string `json:"nameFull"`
	City       string `json:"city"`
	StateProv  string `json:"stateProv"`
	Country    string `json:"country"`
	RookieYear int    `json:"rookieYear"`
	SchoolName string `json:"schoolName"`
	Website    string `json:"website"`
	HomeCMP    string `json:"homeCMP"`
}

// ToTeam converts TeamInput (from API) to the canonical Team record
func (ti *TeamInput) ToTeam() *Team {
	name := ti.NameShort
	if name == "" {
		name = ti.NameFull
	}
	return &Team{
		Number:     ti.TeamNumber,
		Name:       name,
		Country:    ti.Country,
		State:      ti.StateProv,
		City:       ti.City,
		School:     ti.SchoolName,
		Website:    ti.Website,
		Region:     ti.HomeCMP,
		RookieYear: ti.RookieYear,
	}
}
