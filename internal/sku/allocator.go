package sku

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/resaleops/stockroom/internal/catalog"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// A SKU is a three character brand prefix followed by a zero padded three
// digit counter, with an optional "-N" variant suffix: NIK001, NIK001-2.
var (
	skuPattern    = regexp.MustCompile(`^([A-Z0-9]{3})(\d{3})(?:-(\d+))?$`)
	suffixPattern = regexp.MustCompile(`^(\d{3})(?:-\d+)?$`)
)

var (
	ErrInvalidFormat   = errors.New("invalid_sku_format")
	ErrPrefixExhausted = errors.New("sku_prefix_exhausted")
)

// UnknownBrandError carries a prefix suggestion so the operator can extend
// the brand table in one step.
type UnknownBrandError struct {
	Brand           string
	SuggestedPrefix string
}

func (e *UnknownBrandError) Error() string {
	return fmt.Sprintf("no sku prefix configured for brand %q", e.Brand)
}

// Allocator hands out SKUs inside the caller's transaction. The read-max-
// then-insert is raced only across processes; the unique index on items.sku
// is the backstop, and callers retry on a duplicate key error.
type Allocator struct {
	catalog *catalog.Holder
}

func NewAllocator(holder *catalog.Holder) *Allocator {
	return &Allocator{catalog: holder}
}

var Module = fx.Module("sku",
	fx.Provide(NewAllocator),
)

// Allocate returns the next free SKU for a brand. Counters never reuse a
// number: the next value is max(existing)+1 even when earlier items were
// deleted.
func (a *Allocator) Allocate(ctx context.Context, tx *gorm.DB, brand string) (string, error) {
	cfg := a.catalog.Get()
	prefix, ok := cfg.PrefixFor(brand)
	if !ok {
		return "", &UnknownBrandError{
			Brand:           brand,
			SuggestedPrefix: cfg.SuggestPrefix(brand),
		}
	}

	var skus []string
	err := tx.WithContext(ctx).
		Raw(`SELECT sku FROM items WHERE sku LIKE ?`, prefix+"%").
		Scan(&skus).Error
	if err != nil {
		return "", err
	}

	next := maxCounter(prefix, skus) + 1
	if next > 999 {
		return "", ErrPrefixExhausted
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

// NextVariantSKU returns the next "-N" suffix within a variant group. The
// base item counts as unit 1, so the first variant is "-2".
func (a *Allocator) NextVariantSKU(ctx context.Context, tx *gorm.DB, baseSKU string) (string, error) {
	base, _, ok := Split(baseSKU)
	if !ok {
		return "", ErrInvalidFormat
	}

	var skus []string
	err := tx.WithContext(ctx).
		Raw(`SELECT sku FROM items WHERE sku = ? OR sku LIKE ?`, base, base+"-%").
		Scan(&skus).Error
	if err != nil {
		return "", err
	}

	max := 1
	for _, sku := range skus {
		_, variant, ok := Split(sku)
		if !ok {
			continue
		}
		if variant > max {
			max = variant
		}
	}
	return fmt.Sprintf("%s-%d", base, max+1), nil
}

// Split breaks a SKU into its base and variant number. The variant number is
// 1 for a bare base SKU.
func Split(sku string) (base string, variant int, ok bool) {
	m := skuPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(sku)))
	if m == nil {
		return "", 0, false
	}
	variant = 1
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil || n < 1 {
			return "", 0, false
		}
		variant = n
	}
	return m[1] + m[2], variant, true
}

// Valid reports whether a string is a well formed SKU.
func Valid(sku string) bool {
	_, _, ok := Split(sku)
	return ok
}

func maxCounter(prefix string, skus []string) int {
	max := 0
	for _, sku := range skus {
		rest := strings.TrimPrefix(sku, prefix)
		if rest == sku {
			continue
		}
		m := suffixPattern.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
