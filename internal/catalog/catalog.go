package catalog

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Catalog is the externally supplied lookup configuration: brand prefixes for
// SKU allocation, per-platform fee schedules and intake defaults. It is loaded
// once per process and validated before use; new brands or platforms require a
// config change, not a code change.
type Catalog struct {
	BrandPrefixes map[string]string      `mapstructure:"brandPrefixes"`
	PlatformFees  map[string]FeeSchedule `mapstructure:"platformFees"`
	Defaults      Defaults               `mapstructure:"defaults"`
}

// FeeSchedule is a marketplace's cut of a sale: a percentage of the sale price
// plus an optional flat fee in minor currency units.
type FeeSchedule struct {
	Percentage float64 `mapstructure:"percentage" json:"percentage"`
	FlatFee    int64   `mapstructure:"flatFee" json:"flat_fee"`
}

// BasisPoints returns the percentage as basis points of a basis point
// (1% = 100, denominator 10000) so fee math stays in integers.
func (f FeeSchedule) BasisPoints() int64 {
	return int64(math.Round(f.Percentage * 10000))
}

// Apply computes the fee on a sale price: the percentage cut rounded half-up
// in integer minor units, plus the flat fee.
func (f FeeSchedule) Apply(salePrice int64) int64 {
	return (salePrice*f.BasisPoints()+5000)/10000 + f.FlatFee
}

type Defaults struct {
	Location         string `mapstructure:"location"`
	ConsignmentSplit int    `mapstructure:"consignmentSplit"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		BrandPrefixes: map[string]string{
			"nike":        "NIK",
			"adidas":      "ADI",
			"jordan":      "JOR",
			"supreme":     "SUP",
			"new balance": "NBL",
		},
		PlatformFees: map[string]FeeSchedule{
			"store":   {Percentage: 0, FlatFee: 0},
			"ebay":    {Percentage: 0.10, FlatFee: 0},
			"goat":    {Percentage: 0.095, FlatFee: 0},
			"stockx":  {Percentage: 0.095, FlatFee: 0},
			"grailed": {Percentage: 0.06, FlatFee: 30},
			"depop":   {Percentage: 0.10, FlatFee: 0},
		},
		Defaults: Defaults{
			Location:         "",
			ConsignmentSplit: 70,
		},
	}
}

// PrefixFor returns the configured 3-letter SKU prefix for a brand.
func (c Catalog) PrefixFor(brand string) (string, bool) {
	prefix, ok := c.BrandPrefixes[strings.ToLower(strings.TrimSpace(brand))]
	if !ok {
		return "", false
	}
	return strings.ToUpper(prefix), true
}

// FeeFor returns the fee schedule for a marketplace platform.
func (c Catalog) FeeFor(platform string) (FeeSchedule, bool) {
	fee, ok := c.PlatformFees[strings.ToLower(strings.TrimSpace(platform))]
	return fee, ok
}

// Platforms lists the configured platforms in stable order.
func (c Catalog) Platforms() []string {
	names := make([]string, 0, len(c.PlatformFees))
	for name := range c.PlatformFees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var prefixPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func validateCatalog(c Catalog) error {
	seen := make(map[string]string, len(c.BrandPrefixes))
	for brand, prefix := range c.BrandPrefixes {
		upper := strings.ToUpper(strings.TrimSpace(prefix))
		if !prefixPattern.MatchString(upper) {
			return fmt.Errorf("catalog: brand %q prefix %q must be exactly 3 letters", brand, prefix)
		}
		if other, dup := seen[upper]; dup {
			return fmt.Errorf("catalog: prefix %q reused by brands %q and %q", upper, other, brand)
		}
		seen[upper] = brand
	}
	for platform, fee := range c.PlatformFees {
		if fee.Percentage < 0 || fee.Percentage > 1 {
			return fmt.Errorf("catalog: platform %q percentage %v must be within [0,1]", platform, fee.Percentage)
		}
		if fee.FlatFee < 0 {
			return fmt.Errorf("catalog: platform %q flat fee %d must not be negative", platform, fee.FlatFee)
		}
	}
	if split := c.Defaults.ConsignmentSplit; split < 0 || split > 100 {
		return fmt.Errorf("catalog: default consignment split %d must be within 0-100", split)
	}
	return nil
}
