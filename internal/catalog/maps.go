package catalog

import (
	"slices"
	"strings"
)

// pool is the competitive map list in display order.
var pool = []string{
	"Bind", "Ascent", "Haven", "Split", "Icebox", "Breeze",
	"Lotus", "Sunset", "Abyss", "Corrode", "Fracture", "Pearl",
}

// hostMapIDs maps the scheduling site's numeric map ids to map names.
var hostMapIDs = map[int]string{
	0:  "Haven",
	1:  "Bind",
	2:  "Split",
	3:  "Ascent",
	4:  "Icebox",
	5:  "Breeze",
	6:  "Fracture",
	7:  "Pearl",
	8:  "Lotus",
	9:  "Sunset",
	10: "Abyss",
	11: "Corrode",
}

func Pool() []string {
	return slices.Clone(pool)
}

func NameForHostID(id int) (string, bool) {
	name, ok := hostMapIDs[id]
	return name, ok
}

// Canonical returns the pool spelling of name, matched case-insensitively.
func Canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, m := range pool {
		if strings.EqualFold(m, name) {
			return m, true
		}
	}
	return "", false
}
