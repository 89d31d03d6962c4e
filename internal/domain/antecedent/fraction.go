package antecedent

import (
	"encoding/json"
	"strconv"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// UndefinedLabel is how an undefined fraction is written in tabular output.
const UndefinedLabel = "undefined"

// ErrDivisionUndefined is returned by NewFraction when the denominator is zero.
var ErrDivisionUndefined = &errors.AppError{
	Code:    errors.ErrCodeDivisionUndefined,
	Message: "fraction undefined for zero phrase count",
}

// Fraction is count / phrase_count. A zero denominator leaves it undefined,
// which is distinct from zero.
type Fraction struct {
	Value   float64
	Defined bool
}

// NewFraction divides count by total.
func NewFraction(count, total int) (Fraction, error) {
	if total == 0 {
		return Fraction{}, ErrDivisionUndefined
	}
	return Fraction{Value: float64(count) / float64(total), Defined: true}, nil
}

// fractionOf is NewFraction with the undefined case folded into the value.
func fractionOf(count, total int) Fraction {
	f, err := NewFraction(count, total)
	if err != nil {
		return Fraction{}
	}
	return f
}

func (f Fraction) String() string {
	if !f.Defined {
		return UndefinedLabel
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Float returns the value, or nil when undefined. SQL sinks store it as NULL.
func (f Fraction) Float() *float64 {
	if !f.Defined {
		return nil
	}
	v := f.Value
	return &v
}

// MarshalJSON renders undefined as null.
func (f Fraction) MarshalJSON() ([]byte, error) {
	if !f.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ParseFraction reads the tabular form back.
func ParseFraction(s string) (Fraction, error) {
	if s == UndefinedLabel || s == "" {
		return Fraction{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Fraction{}, errors.Wrap(err, errors.ErrCodeMalformedInput, "invalid fraction")
	}
	return Fraction{Value: v, Defined: true}, nil
}

//Personal.AI order the ending
