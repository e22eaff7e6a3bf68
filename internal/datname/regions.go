package datname

import "strings"

// regionSlugs maps canonical region names and their aliases to lowercase
// region slugs. Lookups are case-insensitive.
var regionSlugs = map[string]string{
	"usa":            "usa",
	"us":             "usa",
	"america":        "usa",
	"europe":         "europe",
	"eu":             "europe",
	"japan":          "japan",
	"jp":             "japan",
	"world":          "world",
	"asia":           "asia",
	"australia":      "australia",
	"austria":        "austria",
	"belgium":        "belgium",
	"brazil":         "brazil",
	"canada":         "canada",
	"china":          "china",
	"denmark":        "denmark",
	"finland":        "finland",
	"france":         "france",
	"germany":        "germany",
	"greece":         "greece",
	"hong kong":      "hong-kong",
	"india":          "india",
	"ireland":        "ireland",
	"israel":         "israel",
	"italy":          "italy",
	"korea":          "korea",
	"latin america":  "latin-america",
	"mexico":         "mexico",
	"netherlands":    "netherlands",
	"new zealand":    "new-zealand",
	"norway":         "norway",
	"poland":         "poland",
	"portugal":       "portugal",
	"russia":         "russia",
	"scandinavia":    "scandinavia",
	"spain":          "spain",
	"sweden":         "sweden",
	"switzerland":    "switzerland",
	"taiwan":         "taiwan",
	"uk":             "uk",
	"united kingdom": "uk",
	"unknown":        "unknown",
}

// IsRegion reports whether the name matches a known region, case-insensitively.
func IsRegion(name string) bool {
	_, ok := regionSlugs[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// RegionSlug maps a region name to its canonical lowercase slug. Unknown
// regions map to "unknown".
func RegionSlug(name string) string {
	if slug, ok := regionSlugs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return slug
	}
	return "unknown"
}
