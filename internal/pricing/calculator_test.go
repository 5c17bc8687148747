package pricing

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stairsProduct() *pDomain.Product {
	return &pDomain.Product{
		ID:        "stairs",
		BasePrice: d("500"),
		Currency:  "NIS",
		Dimensions: map[string]pDomain.DimensionSpec{
			"width": {Min: d("60"), Max: d("120"), Default: d("80"), Step: d("10"), Multiplier: d("2"), Visible: true, Editable: true},
		},
		Options: map[string]pDomain.OptionSpec{
			"lacquer": {Cost: d("50")},
		},
	}
}

func bedProduct() *pDomain.Product {
	return &pDomain.Product{
		ID:        "bed",
		BasePrice: d("1200"),
		Currency:  "ils",
		Dimensions: map[string]pDomain.DimensionSpec{
			"width":  {Min: d("80"), Max: d("200"), Default: d("140"), Step: d("10"), Multiplier: d("4.5"), Visible: true, Editable: true},
			"length": {Min: d("180"), Max: d("220"), Default: d("190"), Step: d("5"), Multiplier: d("3"), Visible: true, Editable: true},
			"height": {Min: d("40"), Max: d("40"), Default: d("40"), Step: d("1"), Multiplier: d("0"), Visible: false, Editable: false},
		},
		Options: map[string]pDomain.OptionSpec{
			"lacquer":  {Cost: d("150")},
			"drawers":  {Cost: d("320"), DefaultEnabled: true},
			"headrest": {Cost: d("99.99")},
		},
	}
}

func TestCalculate_ExampleScenario(t *testing.T) {
	res, err := Calculate(stairsProduct(), Configuration{
		Dimensions: map[string]interface{}{"width": 100.0},
		Options:    map[string]bool{"lacquer": true},
	})

	require.NoError(t, err)
	assert.True(t, d("500").Equal(res.BasePrice))
	assert.True(t, d("40").Equal(res.SizeAdjustment), "size adjustment %s", res.SizeAdjustment)
	assert.True(t, d("50").Equal(res.OptionCost))
	assert.True(t, d("590").Equal(res.TotalPrice), "total %s", res.TotalPrice)
	assert.Equal(t, "ILS", res.Currency)
	assert.False(t, res.Clamped)
	assert.True(t, d("100").Equal(res.Effective.Dimensions["width"]))
	assert.True(t, res.Effective.Options["lacquer"])
}

func TestCalculate_OutOfRange(t *testing.T) {
	tests := []struct {
		name       string
		value      interface{}
		constraint string
		bound      string
	}{
		{"above max", 150.0, ConstraintMax, "120"},
		{"one step above max", 130.0, ConstraintMax, "120"},
		{"one step below min", 50.0, ConstraintMin, "60"},
		{"far below min", -10, ConstraintMin, "60"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(stairsProduct(), Configuration{
				Dimensions: map[string]interface{}{"width": tt.value},
			})

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "width", vErr.Field)
			assert.Equal(t, ScopeDimensions, vErr.Scope)
			assert.Equal(t, tt.constraint, vErr.Constraint)
			require.NotNil(t, vErr.Bound)
			assert.True(t, d(tt.bound).Equal(*vErr.Bound))
			assert.Equal(t, tt.constraint+"="+tt.bound, vErr.BoundString())
		})
	}
}

func TestCalculate_MaxErrorMessage(t *testing.T) {
	_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": 150}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width")
	assert.Contains(t, err.Error(), "max=120")
}

func TestCalculate_BoundsAreInclusive(t *testing.T) {
	for _, v := range []float64{60, 120} {
		_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": v}})
		assert.NoError(t, err, "value %v", v)
	}
}

func TestCalculate_MalformedValues(t *testing.T) {
	values := []interface{}{"abc", "", true, map[string]interface{}{"v": 1}, []interface{}{1}, math.NaN(), math.Inf(1)}
	for _, v := range values {
		_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": v}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "value %#v", v)
		assert.Equal(t, ConstraintNumeric, vErr.Constraint)
		assert.Equal(t, "width", vErr.Field)
		assert.Nil(t, vErr.Bound)
	}
}

func TestCalculate_ExtremeMagnitudesRejected(t *testing.T) {
	values := []interface{}{"1e400", "1e20000000", "1e-20000000", json.Number("1e20000000"), "-1e20000000", 1e300, "0.0000000000000000000001"}
	for _, v := range values {
		start := time.Now()
		_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": v}})
		elapsed := time.Since(start)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "value %#v", v)
		assert.Equal(t, ConstraintNumeric, vErr.Constraint)
		assert.Less(t, elapsed, 100*time.Millisecond, "value %#v", v)
		assert.Less(t, len(err.Error()), 128, "value %#v", v)
	}
}

func TestValidationError_TruncatesEchoedValue(t *testing.T) {
	long := strings.Repeat("9", 10000)
	_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": long}})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ConstraintNumeric, vErr.Constraint)
	assert.Less(t, len(err.Error()), 128)
	assert.Contains(t, err.Error(), "...")
}

func TestCalculate_AcceptsNumericForms(t *testing.T) {
	values := []interface{}{100, int64(100), 100.0, "100", " 100 ", json.Number("100"), d("100")}
	for _, v := range values {
		res, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": v}})
		require.NoError(t, err, "value %#v", v)
		assert.True(t, d("540").Equal(res.TotalPrice), "value %#v total %s", v, res.TotalPrice)
	}
}

func TestCalculate_NullUsesDefault(t *testing.T) {
	res, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"width": nil}})
	require.NoError(t, err)
	assert.True(t, res.SizeAdjustment.IsZero())
	assert.True(t, d("500").Equal(res.TotalPrice))
}

func TestCalculate_UndeclaredKeysRejected(t *testing.T) {
	t.Run("dimension", func(t *testing.T) {
		_, err := Calculate(stairsProduct(), Configuration{Dimensions: map[string]interface{}{"depth": 30}})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "depth", vErr.Field)
		assert.Equal(t, ConstraintDeclared, vErr.Constraint)
		assert.Equal(t, "configuration.dimensions.depth", vErr.Path())
	})

	t.Run("option", func(t *testing.T) {
		_, err := Calculate(stairsProduct(), Configuration{Options: map[string]bool{"handrail": true}})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "handrail", vErr.Field)
		assert.Equal(t, ScopeOptions, vErr.Scope)
	})
}

func TestCalculate_NonEditableDimension(t *testing.T) {
	_, err := Calculate(bedProduct(), Configuration{Dimensions: map[string]interface{}{"height": 45}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ConstraintEditable, vErr.Constraint)
	assert.Equal(t, "default=40", vErr.BoundString())

	_, err = Calculate(bedProduct(), Configuration{Dimensions: map[string]interface{}{"height": 40}})
	assert.NoError(t, err)
}

func TestCalculate_NotFound(t *testing.T) {
	_, err := Calculate(nil, Configuration{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCalculate_InvalidSchema(t *testing.T) {
	p := stairsProduct()
	p.BasePrice = decimal.Zero
	_, err := Calculate(p, Configuration{})
	assert.ErrorIs(t, err, ErrInvalidSchema)

	p = stairsProduct()
	p.Dimensions["width"] = pDomain.DimensionSpec{Min: d("10"), Max: d("5"), Default: d("7"), Multiplier: d("1"), Editable: true}
	_, err = Calculate(p, Configuration{})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestCalculate_Determinism(t *testing.T) {
	cfg := Configuration{
		Dimensions: map[string]interface{}{"width": 95.5, "length": "205"},
		Options:    map[string]bool{"lacquer": true, "drawers": false, "headrest": true},
	}
	first, err := Calculate(bedProduct(), cfg)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Calculate(bedProduct(), cfg)
		require.NoError(t, err)
		assert.True(t, first.TotalPrice.Equal(again.TotalPrice))
		assert.True(t, first.SizeAdjustment.Equal(again.SizeAdjustment))
		assert.True(t, first.OptionCost.Equal(again.OptionCost))
	}
}

func TestCalculate_DeterministicFirstViolation(t *testing.T) {
	cfg := Configuration{Dimensions: map[string]interface{}{"width": 1, "length": 1}}
	for i := 0; i < 20; i++ {
		_, err := Calculate(bedProduct(), cfg)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "length", vErr.Field)
	}
}

func TestCalculate_DefaultConfigurationIdentity(t *testing.T) {
	for _, p := range []*pDomain.Product{stairsProduct(), bedProduct()} {
		res, err := Calculate(p, DefaultConfiguration(p))
		require.NoError(t, err)

		want := p.BasePrice
		for _, o := range p.Options {
			if o.DefaultEnabled {
				want = want.Add(o.Cost)
			}
		}
		assert.True(t, want.Equal(res.TotalPrice), "product %s: want %s got %s", p.ID, want, res.TotalPrice)
		assert.True(t, res.SizeAdjustment.IsZero())
	}

	res, err := Calculate(bedProduct(), Configuration{})
	require.NoError(t, err)
	assert.True(t, d("1520").Equal(res.TotalPrice))
}

func TestCalculate_Monotonicity(t *testing.T) {
	p := bedProduct()
	prev, err := Calculate(p, Configuration{Dimensions: map[string]interface{}{"width": 80}})
	require.NoError(t, err)

	for w := 90; w <= 200; w += 10 {
		cur, err := Calculate(p, Configuration{Dimensions: map[string]interface{}{"width": w}})
		require.NoError(t, err)
		assert.True(t, cur.SizeAdjustment.GreaterThan(prev.SizeAdjustment), "width %d", w)
		assert.True(t, cur.TotalPrice.GreaterThan(prev.TotalPrice), "width %d", w)
		prev = cur
	}
}

func TestCalculate_TotalIsSumOfComponents(t *testing.T) {
	res, err := Calculate(bedProduct(), Configuration{
		Dimensions: map[string]interface{}{"width": 145.333},
		Options:    map[string]bool{"headrest": true},
	})
	require.NoError(t, err)
	assert.True(t, res.TotalPrice.Equal(res.BasePrice.Add(res.SizeAdjustment).Add(res.OptionCost)))
	assert.True(t, d("24").Equal(res.SizeAdjustment), "size adjustment %s", res.SizeAdjustment)
}

// Components are rounded to the currency precision before summing, so two
// half-agora fractions each round up and the total carries both of them.
func TestCalculate_RoundsComponentsBeforeSumming(t *testing.T) {
	p := &pDomain.Product{
		ID:        "shelf",
		BasePrice: d("100"),
		Currency:  "ILS",
		Dimensions: map[string]pDomain.DimensionSpec{
			"depth": {Min: d("0"), Max: d("10"), Default: d("0"), Step: d("1"), Multiplier: d("0.005"), Editable: true},
		},
		Options: map[string]pDomain.OptionSpec{
			"hooks": {Cost: d("0.005")},
		},
	}

	res, err := Calculate(p, Configuration{
		Dimensions: map[string]interface{}{"depth": 1},
		Options:    map[string]bool{"hooks": true},
	})
	require.NoError(t, err)
	assert.True(t, d("0.01").Equal(res.SizeAdjustment), "size adjustment %s", res.SizeAdjustment)
	assert.True(t, d("0.01").Equal(res.OptionCost), "option cost %s", res.OptionCost)
	assert.True(t, d("100.02").Equal(res.TotalPrice), "total %s", res.TotalPrice)
	assert.True(t, res.TotalPrice.Equal(res.BasePrice.Add(res.SizeAdjustment).Add(res.OptionCost)))
}

func TestCalculate_ZeroDecimalCurrency(t *testing.T) {
	p := stairsProduct()
	p.Currency = "JPY"
	p.Dimensions["width"] = pDomain.DimensionSpec{Min: d("60"), Max: d("120"), Default: d("80"), Step: d("0.5"), Multiplier: d("3"), Editable: true}

	res, err := Calculate(p, Configuration{Dimensions: map[string]interface{}{"width": 80.5}})
	require.NoError(t, err)
	assert.True(t, d("502").Equal(res.TotalPrice), "total %s", res.TotalPrice)
}

func TestCalculate_Underflow(t *testing.T) {
	p := &pDomain.Product{
		ID:        "shelf",
		BasePrice: d("10"),
		Currency:  "ILS",
		Dimensions: map[string]pDomain.DimensionSpec{
			"width": {Min: d("20"), Max: d("100"), Default: d("80"), Step: d("10"), Multiplier: d("1"), Editable: true},
		},
	}

	res, err := Calculate(p, Configuration{Dimensions: map[string]interface{}{"width": 20}})
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.True(t, res.TotalPrice.IsZero())
	assert.True(t, d("-60").Equal(res.SizeAdjustment))
}

func TestCalculate_NonNegativeOverWholeRange(t *testing.T) {
	p := bedProduct()
	for w := 80; w <= 200; w += 5 {
		for l := 180; l <= 220; l += 5 {
			res, err := Calculate(p, Configuration{
				Dimensions: map[string]interface{}{"width": w, "length": l},
				Options:    map[string]bool{"drawers": false},
			})
			require.NoError(t, err)
			assert.False(t, res.TotalPrice.IsNegative())
		}
	}
}

func TestCalculate_NoDimensionsOrOptions(t *testing.T) {
	p := &pDomain.Product{ID: "stool", BasePrice: d("149.9"), Currency: "ILS"}
	res, err := Calculate(p, Configuration{})
	require.NoError(t, err)
	assert.True(t, d("149.9").Equal(res.TotalPrice))
	assert.Empty(t, res.Effective.Dimensions)
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	p := stairsProduct()
	cfg := Configuration{Dimensions: map[string]interface{}{"width": 100}, Options: map[string]bool{"lacquer": true}}
	_, err := Calculate(p, cfg)
	require.NoError(t, err)

	assert.Len(t, cfg.Dimensions, 1)
	assert.Len(t, cfg.Options, 1)
	assert.True(t, d("80").Equal(p.Dimensions["width"].Default))
}
