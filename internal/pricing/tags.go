package pricing

import (
	"errors"
	"strconv"

	"github.com/richxcame/visit-pricing/internal/ratetable"
)

// Text written in place of a price when a job cannot be priced
const (
	TagNotInTable       = "City not in fixed rate table"
	TagOutOfRange       = "Outside rate table"
	TagAPIKeyMissing    = "ERROR: API Key not configured."
	tagUnexpectedPrefix = "ERROR: "
)

// TagFor maps a rate table error to the text shown to the operator
func TagFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ratetable.ErrLocationNotInTable):
		return TagNotInTable
	case errors.Is(err, ratetable.ErrOutOfRange):
		return TagOutOfRange
	default:
		return tagUnexpectedPrefix + err.Error()
	}
}

// FormatPrice renders a price the way it is written back: no trailing zeros
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
