package domain

import (
	"fmt"
	"time"
)

const NotAvailable = "N/A"

// DateLayout is the boundary format the stats site expects.
const DateLayout = "2006-01-02"

type MapPerformanceRecord struct {
	MapName        string        `json:"map_name"`
	PlayCount      int           `json:"play_count"`
	WinRate        string        `json:"win_rate"`
	AttackWinRate  string        `json:"attack_win_rate"`
	DefenseWinRate string        `json:"defense_win_rate"`
	Compositions   []Composition `json:"compositions"`
}

// Played reports whether the team played the map inside the queried window.
func (r *MapPerformanceRecord) Played() bool {
	return r != nil && r.PlayCount > 0
}

type Composition struct {
	UsageCount string   `json:"usage_count"`
	Members    []Member `json:"members"`
}

type Member struct {
	Identifier string `json:"identifier"`
	ImageURL   string `json:"image_url"`
}

// DateWindow is either relative (Days > 0) or explicit (Start/End).
type DateWindow struct {
	Days  int    `json:"days,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func LastDays(days int) DateWindow {
	return DateWindow{Days: days}
}

func Between(start, end string) DateWindow {
	return DateWindow{Start: start, End: end}
}

func (w DateWindow) IsZero() bool {
	return w == DateWindow{}
}

func (w DateWindow) IsExplicit() bool {
	return w.Start != "" || w.End != ""
}

func (w DateWindow) Validate() error {
	if !w.IsExplicit() {
		if w.Days <= 0 {
			return fmt.Errorf("window days must be positive, got %d", w.Days)
		}
		return nil
	}

	start, err := time.Parse(DateLayout, w.Start)
	if err != nil {
		return fmt.Errorf("invalid window start %q: %w", w.Start, err)
	}
	end, err := time.Parse(DateLayout, w.End)
	if err != nil {
		return fmt.Errorf("invalid window end %q: %w", w.End, err)
	}
	if start.After(end) {
		return fmt.Errorf("window start %s is after end %s", w.Start, w.End)
	}
	return nil
}

// Bounds resolves the window to YYYY-MM-DD boundaries. Relative windows are
// computed in UTC as [now - Days, now].
func (w DateWindow) Bounds(now time.Time) (string, string) {
	if w.IsExplicit() {
		return w.Start, w.End
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -w.Days)
	return start.Format(DateLayout), end.Format(DateLayout)
}

// Key identifies the window in cache keys. It does not depend on the current
// date, so a relative window keeps its key across midnight.
func (w DateWindow) Key() string {
	if w.IsExplicit() {
		return w.Start + "_" + w.End
	}
	return fmt.Sprintf("%dd", w.Days)
}

func (w DateWindow) String() string {
	return w.Key()
}
