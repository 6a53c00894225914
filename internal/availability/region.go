package availability

import "strings"

// regionMap expands a coarse territory token into its member cities. Tokens
// that are not region names pass through unchanged.
var regionMap = map[string][]string{
	"US": {
		"LOS ANGELES",
		"ATLANTA",
		"CHICAGO",
		"ALBUQUERQUE",
		"NEW ORLEANS",
	},
	"CAN": {
		"VANCOUVER",
		"TORONTO",
	},
}

// ExpandLocations trims the raw tokens, drops empties, expands region tokens
// and removes duplicates while keeping first-appearance order.
func ExpandLocations(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := map[string]struct{}{}

	add := func(loc string) {
		if _, ok := seen[loc]; ok {
			return
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if cities, ok := regionMap[strings.ToUpper(token)]; ok {
			for _, city := range cities {
				add(city)
			}
			continue
		}
		add(token)
	}
	return out
}

// SplitCSV splits a comma separated filter cell into trimmed tokens.
func SplitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
