// Package pricing computes the price of a configured product. Calculate is
// a pure function: it reads the product schema and the requested
// configuration and allocates a fresh Result, so it is safe to call from any
// number of goroutines.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ridloal/woodkits-store/internal/platform/money"
	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"
)

// Configuration is the caller supplied set of dimension values and option
// toggles. Dimension values are kept loosely typed because they arrive from
// JSON and HTML forms; Calculate validates them.
type Configuration struct {
	Dimensions map[string]interface{} `json:"dimensions"`
	Options    map[string]bool        `json:"options"`
}

// Effective is the fully resolved configuration a price was computed for.
type Effective struct {
	Dimensions map[string]decimal.Decimal `json:"dimensions"`
	Options    map[string]bool            `json:"options"`
}

type Result struct {
	BasePrice      decimal.Decimal
	SizeAdjustment decimal.Decimal
	OptionCost     decimal.Decimal
	TotalPrice     decimal.Decimal
	Currency       string
	// Clamped is set when the computed total was negative and forced to zero.
	Clamped   bool
	Effective Effective
}

// DefaultConfiguration returns every dimension at its default and every
// option at its default flag.
func DefaultConfiguration(p *pDomain.Product) Configuration {
	cfg := Configuration{
		Dimensions: make(map[string]interface{}, len(p.Dimensions)),
		Options:    make(map[string]bool, len(p.Options)),
	}
	for name, d := range p.Dimensions {
		cfg.Dimensions[name] = d.Default
	}
	for name, o := range p.Options {
		cfg.Options[name] = o.DefaultEnabled
	}
	return cfg
}

// Calculate prices product for the requested configuration.
//
// Size adjustment is measured from each dimension's default, so the default
// configuration costs exactly the base price plus default-enabled options.
// Components are rounded to the currency precision before they are summed,
// which keeps TotalPrice == BasePrice + SizeAdjustment + OptionCost exact.
func Calculate(product *pDomain.Product, cfg Configuration) (Result, error) {
	if product == nil {
		return Result{}, ErrProductNotFound
	}
	if !product.BasePrice.IsPositive() {
		return Result{}, fmt.Errorf("%w: product %s has non-positive base price", ErrInvalidSchema, product.ID)
	}
	currency := money.Normalize(product.Currency)

	if err := checkDeclared(product, cfg); err != nil {
		return Result{}, err
	}

	eff := Effective{
		Dimensions: make(map[string]decimal.Decimal, len(product.Dimensions)),
		Options:    make(map[string]bool, len(product.Options)),
	}

	sizeAdjustment := decimal.Zero
	for _, name := range sortedKeys(product.Dimensions) {
		spec := product.Dimensions[name]
		if spec.Min.GreaterThan(spec.Max) {
			return Result{}, fmt.Errorf("%w: dimension %s has min > max", ErrInvalidSchema, name)
		}

		value, err := resolveDimension(name, spec, cfg.Dimensions)
		if err != nil {
			return Result{}, err
		}
		eff.Dimensions[name] = value
		sizeAdjustment = sizeAdjustment.Add(value.Sub(spec.Default).Mul(spec.Multiplier))
	}

	optionCost := decimal.Zero
	for _, name := range sortedKeys(product.Options) {
		spec := product.Options[name]
		enabled := spec.DefaultEnabled
		if requested, ok := cfg.Options[name]; ok {
			enabled = requested
		}
		eff.Options[name] = enabled
		if enabled {
			optionCost = optionCost.Add(spec.Cost)
		}
	}

	res := Result{
		BasePrice:      money.Round(product.BasePrice, currency),
		SizeAdjustment: money.Round(sizeAdjustment, currency),
		OptionCost:     money.Round(optionCost, currency),
		Currency:       currency,
		Effective:      eff,
	}
	res.TotalPrice = res.BasePrice.Add(res.SizeAdjustment).Add(res.OptionCost)
	if res.TotalPrice.IsNegative() {
		res.TotalPrice = decimal.Zero
		res.Clamped = true
	}
	return res, nil
}

func checkDeclared(product *pDomain.Product, cfg Configuration) error {
	for _, name := range sortedKeys(cfg.Dimensions) {
		if _, ok := product.Dimensions[name]; !ok {
			return &ValidationError{Scope: ScopeDimensions, Field: name, Constraint: ConstraintDeclared, Value: cfg.Dimensions[name]}
		}
	}
	for _, name := range sortedKeys(cfg.Options) {
		if _, ok := product.Options[name]; !ok {
			return &ValidationError{Scope: ScopeOptions, Field: name, Constraint: ConstraintDeclared, Value: cfg.Options[name]}
		}
	}
	return nil
}

func resolveDimension(name string, spec pDomain.DimensionSpec, requested map[string]interface{}) (decimal.Decimal, error) {
	raw, ok := requested[name]
	if !ok || raw == nil {
		return spec.Default, nil
	}

	value, ok := toDecimal(raw)
	if !ok {
		return decimal.Zero, &ValidationError{Scope: ScopeDimensions, Field: name, Constraint: ConstraintNumeric, Value: raw}
	}
	if !spec.Editable && !value.Equal(spec.Default) {
		bound := spec.Default
		return decimal.Zero, &ValidationError{Scope: ScopeDimensions, Field: name, Constraint: ConstraintEditable, Bound: &bound, Value: value}
	}
	if value.LessThan(spec.Min) {
		bound := spec.Min
		return decimal.Zero, &ValidationError{Scope: ScopeDimensions, Field: name, Constraint: ConstraintMin, Bound: &bound, Value: value}
	}
	if value.GreaterThan(spec.Max) {
		bound := spec.Max
		return decimal.Zero, &ValidationError{Scope: ScopeDimensions, Field: name, Constraint: ConstraintMax, Bound: &bound, Value: value}
	}
	return value, nil
}

// Requested values outside these limits are rejected before any comparison,
// since comparing decimals rescales them to a common exponent.
const (
	maxValueExponent = 18
	maxValueDigits   = 30
)

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	d, ok := parseDecimal(v)
	if !ok {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxValueExponent || exp < -maxValueExponent || d.NumDigits() > maxValueDigits {
		return decimal.Zero, false
	}
	return d, true
}

func parseDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
