package models

import (
	"encoding/json"
	"fmt"
)

// HeadToHead counts decided bouts against a single opponent. Draws are not counted.
type HeadToHead struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Form is a newest-first run of results. It is encoded as single-letter codes,
// e.g. ["W","L","D"].
type Form []FightResult

// String renders the form as W/L/D letters, most recent first.
func (f Form) String() string {
	b := make([]byte, 0, len(f))
	for _, r := range f {
		b = append(b, r.Code()...)
	}
	return string(b)
}

func (f Form) MarshalJSON() ([]byte, error) {
	codes := make([]string, len(f))
	for i, r := range f {
		codes[i] = r.Code()
	}
	return json.Marshal(codes)
}

func (f *Form) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	form := make(Form, 0, len(codes))
	for _, code := range codes {
		r, ok := ResultFromCode(code)
		if !ok {
			return fmt.Errorf("unknown form code %q", code)
		}
		form = append(form, r)
	}
	*f = form
	return nil
}

// RankingEntry is a derived, per-request view of a standing.
type RankingEntry struct {
	Rank int `json:"rank"`
	FighterStanding

	RecentForm        Form                  `json:"recent_form"`
	CurrentStreak     int                   `json:"current_streak"`
	ConsecutiveLosses int                   `json:"consecutive_losses"`
	HeadToHead        map[string]HeadToHead `json:"head_to_head"`
	AvgOpponentPoints float64               `json:"avg_opponent_points"`
}
