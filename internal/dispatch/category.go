package dispatch

import "strings"

// Category is the coarse, comparable vehicle category.
type Category string

const (
	CategoryLarge Category = "large"
	CategorySmall Category = "small"
)

// fleetCategories maps every fleet code onto exactly one coarse category.
// Coarse codes map onto themselves so request-side vocabulary resolves too.
var fleetCategories = map[string]Category{
	"large": CategoryLarge,
	"small": CategorySmall,

	"bus_45": CategoryLarge,
	"bus_41": CategoryLarge,
	"bus_35": CategoryLarge,
	"bus_28": CategoryLarge,

	"minibus_25": CategorySmall,
	"van_15":     CategorySmall,
	"van_12":     CategorySmall,
}

// Resolve maps a raw category or fleet code (case-insensitive) to its coarse
// category. Unknown codes resolve to their own normalised value so they only
// ever match the very same code.
func Resolve(raw string) Category {
	code := normalizeCode(raw)
	if code == "" {
		return ""
	}
	if c, ok := fleetCategories[code]; ok {
		return c
	}
	return Category(code)
}

// SameCategory resolves both sides before comparing them. An empty code never
// matches anything.
func SameCategory(requested, operated string) bool {
	a := Resolve(requested)
	if a == "" {
		return false
	}
	return a == Resolve(operated)
}

func normalizeCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "_")
	return strings.ReplaceAll(s, "-", "_")
}
