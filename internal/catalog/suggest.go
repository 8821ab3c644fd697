package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlpha = regexp.MustCompile(`[^A-Z]`)

// SuggestPrefix derives a free 3-letter prefix for a brand that has none
// configured. It is a hint for the operator editing the catalog, never an
// implicit allocation.
func (c Catalog) SuggestPrefix(brand string) string {
	base := basePrefix(brand)

	used := make(map[string]struct{}, len(c.BrandPrefixes))
	for _, prefix := range c.BrandPrefixes {
		used[strings.ToUpper(prefix)] = struct{}{}
	}

	if _, taken := used[base]; !taken {
		return base
	}
	for _, variant := range phoneticVariants(base) {
		if _, taken := used[variant]; !taken {
			return variant
		}
	}
	for n := 1; n <= 9; n++ {
		candidate := fmt.Sprintf("%s%d", base[:2], n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
	return base
}

func basePrefix(brand string) string {
	clean := nonAlpha.ReplaceAllString(strings.ToUpper(strings.TrimSpace(brand)), "")
	switch {
	case len(clean) >= 3:
		return clean[:3]
	case len(clean) >= 1:
		for len(clean) < 3 {
			clean += clean[len(clean)-1:]
		}
		return clean
	default:
		return "UNK"
	}
}

// phoneticSubstitutions drives collision resolution: each letter maps to
// sound-alike replacements tried position by position.
var phoneticSubstitutions = map[byte][]byte{
	'A': {'E', 'I', 'O', 'U'},
	'E': {'A', 'I', 'O', 'U'},
	'I': {'A', 'E', 'O', 'U'},
	'O': {'A', 'E', 'I', 'U'},
	'U': {'A', 'E', 'I', 'O'},
	'B': {'P', 'V'},
	'C': {'K', 'S'},
	'D': {'T'},
	'F': {'V', 'P'},
	'G': {'K', 'J'},
	'J': {'G', 'Y'},
	'K': {'C', 'G'},
	'P': {'B', 'F'},
	'S': {'C', 'Z'},
	'T': {'D'},
	'V': {'B', 'F'},
	'Y': {'J'},
	'Z': {'S'},
}

func phoneticVariants(prefix string) []string {
	if len(prefix) != 3 {
		return nil
	}
	var variants []string
	for pos := 0; pos < 3; pos++ {
		for _, replacement := range phoneticSubstitutions[prefix[pos]] {
			variants = append(variants, prefix[:pos]+string(replacement)+prefix[pos+1:])
		}
	}
	return variants
}
