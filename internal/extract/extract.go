// Package extract turns a team statistics page into a per-map record.
//
// Extraction never fails loudly: a page without a statistics table, without a
// row for the map, or with a truncated row yields "not found", and any single
// field that cannot be read degrades to domain.NotAvailable.
package extract

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"valorant-scout/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

type Extractor struct {
	layout Layout
	logger zerolog.Logger
}

func New(layout Layout, logger zerolog.Logger) *Extractor {
	return &Extractor{layout: layout, logger: logger.With().Str("component", "extract").Logger()}
}

var defaultExtractor = New(DefaultLayout, zerolog.Nop())

// Extract parses document with DefaultLayout. The boolean is false when no
// record exists for mapName.
func Extract(document, mapName string) (*domain.MapPerformanceRecord, bool) {
	return defaultExtractor.Extract(document, mapName)
}

func (e *Extractor) Extract(document, mapName string) (*domain.MapPerformanceRecord, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		e.logger.Debug().Err(err).Msg("failed to parse document")
		return nil, false
	}

	table := e.statsTable(doc)
	if table == nil {
		e.logger.Debug().Str("map", mapName).Msg("no stats table found")
		return nil, false
	}

	row, playCount, ok := e.mapRow(table, mapName)
	if !ok {
		e.logger.Debug().Str("map", mapName).Msg("no row for map")
		return nil, false
	}

	cells := e.cellValues(row)
	if len(cells) < e.layout.MinCells {
		e.logger.Debug().Str("map", mapName).Int("cells", len(cells)).Msg("map row is malformed")
		return nil, false
	}

	record := &domain.MapPerformanceRecord{
		MapName:        mapName,
		PlayCount:      playCount,
		WinRate:        valueAt(cells, e.layout.WinRateColumn),
		AttackWinRate:  valueAt(cells, e.layout.AttackWinRateColumn),
		DefenseWinRate: valueAt(cells, e.layout.DefenseWinRateColumn),
		Compositions:   e.compositions(row),
	}

	e.logger.Debug().
		Str("map", mapName).
		Int("play_count", record.PlayCount).
		Int("cells", len(cells)).
		Int("compositions", len(record.Compositions)).
		Msg("map stats extracted")

	return record, true
}

// statsTable returns the first table whose text carries every marker.
func (e *Extractor) statsTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		text := table.Text()
		for _, marker := range e.layout.TableMarkers {
			if !strings.Contains(text, marker) {
				return true
			}
		}
		found = table
		return false
	})
	return found
}

// mapRow scans rows in order and returns the first whose label contains
// mapName, case-insensitively.
func (e *Extractor) mapRow(table *goquery.Selection, mapName string) (*goquery.Selection, int, bool) {
	needle := strings.ToLower(mapName)

	var (
		match     *goquery.Selection
		playCount int
	)
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		first := row.ChildrenFiltered("td").First()
		if first.Length() == 0 {
			return true
		}
		m := rowLabel.FindStringSubmatch(collapse(first.Text()))
		if m == nil {
			return true
		}
		label := strings.TrimSpace(m[1])
		count, err := strconv.Atoi(m[2])
		if err != nil {
			count = 0
		}

		e.logger.Debug().Int("row", i).Str("label", label).Int("plays", count).Msg("checking row")

		if strings.Contains(strings.ToLower(label), needle) {
			match = row
			playCount = count
			return false
		}
		return true
	})

	return match, playCount, match != nil
}

// cellValues reads the displayed value of every direct cell of row.
func (e *Extractor) cellValues(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td")
	values := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		if primary := cell.Find(e.layout.PrimaryValue).First(); primary.Length() > 0 {
			values = append(values, collapse(primary.Text()))
			return
		}
		values = append(values, collapse(cell.Text()))
	})
	return values
}

func (e *Extractor) compositions(row *goquery.Selection) []domain.Composition {
	compositions := []domain.Composition{}
	row.Find(e.layout.CompositionMarker).Each(func(_ int, comp *goquery.Selection) {
		var members []domain.Member
		comp.Find("img").Each(func(_ int, img *goquery.Selection) {
			id, ok := e.agentIdentifier(img.AttrOr("src", ""))
			if !ok {
				return
			}
			members = append(members, domain.Member{
				Identifier: id,
				ImageURL:   fmt.Sprintf(e.layout.AgentImageURL, id),
			})
		})
		if len(members) == 0 {
			return
		}
		compositions = append(compositions, domain.Composition{
			UsageCount: e.usageLabel(comp),
			Members:    members,
		})
	})
	return compositions
}

// usageLabel reads the first label element, falling back to the first
// text-only div, then to the layout default.
func (e *Extractor) usageLabel(comp *goquery.Selection) string {
	if label := comp.Find(e.layout.UsageLabel).First(); label.Length() > 0 {
		if text := collapse(label.Text()); text != "" {
			return text
		}
		return e.layout.DefaultUsage
	}

	usage := e.layout.DefaultUsage
	comp.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if div.Children().Length() > 0 {
			return true
		}
		if text := collapse(div.Text()); text != "" {
			usage = text
		}
		return false
	})
	return usage
}

func (e *Extractor) agentIdentifier(src string) (string, bool) {
	if src == "" {
		return "", false
	}
	m := e.layout.AgentIcon.FindStringSubmatch(src)
	if m == nil {
		return "", false
	}
	id := m[1]
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	id = path.Base(id)
	return id, id != "" && id != "." && id != "/"
}

func valueAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) || cells[idx] == "" {
		return domain.NotAvailable
	}
	return cells[idx]
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
