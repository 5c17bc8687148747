package pricing

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when no product schema is available.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidSchema means the stored product cannot be priced at all.
	ErrInvalidSchema = errors.New("invalid product pricing schema")
)

// Constraint names reported by ValidationError.
const (
	ConstraintNumeric  = "numeric"
	ConstraintMin      = "min"
	ConstraintMax      = "max"
	ConstraintDeclared = "declared"
	ConstraintEditable = "editable"
)

const (
	ScopeDimensions = "dimensions"
	ScopeOptions    = "options"
)

// ValidationError reports a configuration value the product schema rejects.
type ValidationError struct {
	Scope      string
	Field      string
	Constraint string
	Bound      *decimal.Decimal
	Value      interface{}
}

const maxEchoedValue = 32

func (e *ValidationError) Error() string {
	switch e.Constraint {
	case ConstraintMin:
		return fmt.Sprintf("%s: value %s is below min=%s", e.Field, e.valueString(), e.Bound)
	case ConstraintMax:
		return fmt.Sprintf("%s: value %s exceeds max=%s", e.Field, e.valueString(), e.Bound)
	case ConstraintNumeric:
		return fmt.Sprintf("%s: value %s is not a number", e.Field, e.valueString())
	case ConstraintDeclared:
		return fmt.Sprintf("%s: not declared in product %s", e.Field, e.Scope)
	case ConstraintEditable:
		return fmt.Sprintf("%s: value is fixed at %s", e.Field, e.Bound)
	}
	return fmt.Sprintf("%s: invalid value %s", e.Field, e.valueString())
}

// valueString renders the offending value, truncated so error messages stay
// small whatever the client sent.
func (e *ValidationError) valueString() string {
	var s string
	switch v := e.Value.(type) {
	case string:
		s = strconv.Quote(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	if r := []rune(s); len(r) > maxEchoedValue {
		return string(r[:maxEchoedValue]) + "..."
	}
	return s
}

// Path returns the dotted location of the field in the request payload.
func (e *ValidationError) Path() string {
	return "configuration." + e.Scope + "." + e.Field
}

// BoundString formats the violated bound as "max=120", or "" when the
// constraint has no numeric bound.
func (e *ValidationError) BoundString() string {
	if e.Bound == nil {
		return ""
	}
	if e.Constraint == ConstraintEditable {
		return "default=" + e.Bound.String()
	}
	return e.Constraint + "=" + e.Bound.String()
}
