package models

// Breakdown is an alliance's score decomposition for one match. The four
// core components exist in every season; game-specific elements land in the
// fixed Comps array, interpreted through the season's ComponentSchema.
// Missing or unknown fields parse to 0.
type Breakdown struct {
	TotalPoints   float64 `json:"total_points"`
	AutoPoints    float64 `json:"auto_points"`
	TeleopPoints  float64 `json:"teleop_points"`
	EndgamePoints float64 `json:"endgame_points"`
	PenaltyPoints float64 `json:"penalty_points"`

	Comps [maxComps]float64 `json:"comps"`
}

const maxComps = 16

// Component is one game-specific scoring element slot
type Component struct {
	Field string // FTC Events API field name
	Name  string // human-readable label
}

// componentSchemas maps a season to its game-specific scoring elements.
// Seasons not listed carry only the core components.
var componentSchemas = map[int][]Component{
	2022: { // POWERPLAY
		{"autoTerminal", "Auto Terminal"},
		{"autoNavigated1", "Auto Navigated 1"},
		{"autoNavigated2", "Auto Navigated 2"},
		{"dcTerminalNear", "TeleOp Terminal Near"},
		{"dcTerminalFar", "TeleOp Terminal Far"},
		{"egNavigated1", "Endgame Navigated 1"},
		{"egNavigated2", "Endgame Navigated 2"},
		{"coneOwnedJunctions", "Owned Junctions"},
		{"beaconOwnedJunctions", "Beacon Junctions"},
		{"circuit", "Circuit"},
	},
	2023: { // CENTERSTAGE
		{"autoBackstage", "Auto Backstage Pixels"},
		{"autoBackdrop", "Auto Backdrop Pixels"},
		{"purplePixel1", "Purple Pixel 1"},
		{"purplePixel2", "Purple Pixel 2"},
		{"yellowPixel1", "Yellow Pixel 1"},
		{"yellowPixel2", "Yellow Pixel 2"},
		{"dcBackstage", "TeleOp Backstage"},
		{"dcBackdrop", "TeleOp Backdrop"},
		{"mosaics", "Mosaics"},
		{"setLine", "Set Lines"},
		{"drone1", "Drone 1"},
		{"drone2", "Drone 2"},
		{"endgameParking1", "Endgame Park 1"},
		{"endgameParking2", "Endgame Park 2"},
	},
	2024: { // INTO THE DEEP
		{"autoSampleNet", "Auto Net Samples"},
		{"autoSampleLow", "Auto Low Basket"},
		{"autoSampleHigh", "Auto High Basket"},
		{"autoSpecimenLow", "Auto Low Chamber"},
		{"autoSpecimenHigh", "Auto High Chamber"},
		{"dcSampleNet", "TeleOp Net Samples"},
		{"dcSampleLow", "TeleOp Low Basket"},
		{"dcSampleHigh", "TeleOp High Basket"},
		{"dcSpecimenLow", "TeleOp Low Chamber"},
		{"dcSpecimenHigh", "TeleOp High Chamber"},
		{"endgameAscent1", "Robot 1 Ascent"},
		{"endgameAscent2", "Robot 2 Ascent"},
		{"autoPark1", "Robot 1 Auto Park"},
		{"autoPark2", "Robot 2 Auto Park"},
	},
}

// ComponentSchema returns the game-specific component slots for a season
func ComponentSchema(season int) []Component {
	return componentSchemas[season]
}

// ParseBreakdown builds a Breakdown from a raw FTC Events API alliance
// score object. Booleans count as 1, anything unparseable as 0.
func ParseBreakdown(season int, raw map[string]any) Breakdown {
	bd := Breakdown{}
	if raw == nil {
		return bd
	}

	bd.TotalPoints = numField(raw, "totalPoints", "totalPointsNp")
	bd.AutoPoints = numField(raw, "autoPoints")
	bd.TeleopPoints = numField(raw, "dcPoints", "teleopPoints")
	bd.EndgamePoints = numField(raw, "endgamePoints")
	bd.PenaltyPoints = numField(raw, "penaltyPointsCommitted")

	for i, comp := range ComponentSchema(season) {
		if i >= maxComps {
			break
		}
		bd.Comps[i] = numField(raw, comp.Field)
	}

	return bd
}

// HasComponents reports whether any of the auto/teleop/endgame splits is
// nonzero; the rating engine skips component updates otherwise.
func (b Breakdown) HasComponents() bool {
	return b.AutoPoints+b.TeleopPoints+b.EndgamePoints > 0
}

func numField(raw map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case int:
			if v != 0 {
				return float64(v)
			}
		case bool:
			if v {
				return 1
			}
		}
	}
	return 0
}
