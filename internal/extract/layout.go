package extract

import "regexp"

// Layout describes the stats table as the stats site currently renders it.
// The column indices were observed on a live page and are not documented by
// the site; update them here when the markup changes.
type Layout struct {
	// TableMarkers must all appear in a table's text for it to be selected.
	TableMarkers []string
	// MinCells is the smallest cell count of a well-formed map row.
	MinCells int

	WinRateColumn        int
	AttackWinRateColumn  int
	DefenseWinRateColumn int

	// PrimaryValue selects the element holding a cell's displayed value.
	PrimaryValue string
	// CompositionMarker selects one aggregated lineup inside a row.
	CompositionMarker string
	// UsageLabel selects the usage count inside a composition.
	UsageLabel   string
	DefaultUsage string

	// AgentIcon matches an agent icon path; group 1 is the filename stem.
	AgentIcon *regexp.Regexp
	// AgentImageURL is formatted with the agent identifier.
	AgentImageURL string
}

var DefaultLayout = Layout{
	TableMarkers:         []string{"Map", "WIN%"},
	MinCells:             7,
	WinRateColumn:        2,
	AttackWinRateColumn:  7,
	DefenseWinRateColumn: 10,
	PrimaryValue:         ".mod-first",
	CompositionMarker:    ".agent-comp-agg",
	UsageLabel:           "span",
	DefaultUsage:         "1",
	AgentIcon:            regexp.MustCompile(`/agents/(?:[^/"?#]+/)*([^/"?#]+)\.png(?:[?#].*)?$`),
	AgentImageURL:        "https://www.vlr.gg/img/vlr/game/agents/%s.png",
}

// rowLabel matches the first cell of a map row, e.g. "Ascent (14)". Digits
// may follow the first letter, so "Ascent 2 (14)" labels "Ascent 2".
var rowLabel = regexp.MustCompile(`([A-Za-z][A-Za-z0-9\s]*?)\s*\((\d+)\)`)
