package reports

import (
	"fmt"
	"strings"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// LineKind tags a report line id.
type LineKind string

const (
	KindProduct     LineKind = "product"
	KindMove        LineKind = "move"
	KindTransferIn  LineKind = "transfer_in"
	KindTransferOut LineKind = "transfer_out"
	KindLoadMore    LineKind = "loadmore"
	KindTotal       LineKind = "total"
)

// LineID addresses a report line. ID is the product for product and
// load-more lines and the stock move line for detail lines.
type LineID struct {
	Kind LineKind
	ID   id.ID
}

// ProductLineID returns the id of a product's summary line.
func ProductLineID(productID id.ID) LineID {
	return LineID{Kind: KindProduct, ID: productID}
}

// LoadMoreLineID returns the id of a product's load-more line.
func LoadMoreLineID(productID id.ID) LineID {
	return LineID{Kind: KindLoadMore, ID: productID}
}

// TotalLineID is the grand total line.
var TotalLineID = LineID{Kind: KindTotal}

// String renders "<kind>_<uuid>", or "total".
func (l LineID) String() string {
	if l.Kind == KindTotal {
		return string(KindTotal)
	}
	return string(l.Kind) + "_" + l.ID.String()
}

// ParseLineID parses the String form.
func ParseLineID(s string) (LineID, error) {
	if s == string(KindTotal) {
		return TotalLineID, nil
	}
	i := strings.LastIndexByte(s, '_')
	if i <= 0 {
		return LineID{}, invalidLineID(s)
	}
	kind := LineKind(s[:i])
	switch kind {
	case KindProduct, KindMove, KindTransferIn, KindTransferOut, KindLoadMore:
	default:
		return LineID{}, invalidLineID(s)
	}
	v, err := id.Parse(s[i+1:])
	if err != nil {
		return LineID{}, invalidLineID(s).WithCause(err)
	}
	return LineID{Kind: kind, ID: v}, nil
}

func invalidLineID(s string) *apperror.AppError {
	return apperror.NewInvalidInput(apperror.CodeInvalidLineID, fmt.Sprintf("invalid line id %q", s)).
		WithDetail("line_id", s)
}

// ProductID returns the product addressed by a product or load-more line.
func (l LineID) ProductID() (id.ID, error) {
	if l.Kind != KindProduct && l.Kind != KindLoadMore {
		return id.ID{}, invalidLineID(l.String())
	}
	return l.ID, nil
}

func (l LineID) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LineID) UnmarshalText(b []byte) error {
	parsed, err := ParseLineID(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
