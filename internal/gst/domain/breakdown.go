package domain

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
)

// Breakdown positions inside a breakdown entry.
const (
	BreakdownNet = iota
	BreakdownCGST
	BreakdownSGST
	BreakdownIGST
	BreakdownCess
	BreakdownTotal
)

// BreakdownEntry is [net, cgst, sgst, igst, cess, total].
type BreakdownEntry [6]float64

// Breakdown maps "<item_code>|<hsn>" to its tax entry.
type Breakdown map[string]BreakdownEntry

// BreakdownKey builds the item-and-classification key.
func BreakdownKey(item *sidomain.Item) string {
	return item.ItemCode + "|" + item.ClassificationCode()
}

// BuildBreakdown rebuilds the breakdown from line amounts. Repeated keys keep
// the last occurrence.
func BuildBreakdown(items []*sidomain.Item) Breakdown {
	out := make(Breakdown, len(items))
	for _, item := range lo.Compact(items) {
		cess := 0.0
		out[BreakdownKey(item)] = BreakdownEntry{
			item.NetAmount,
			item.CGSTAmount,
			item.SGSTAmount,
			item.IGSTAmount,
			cess,
			item.CGSTAmount + item.SGSTAmount + item.IGSTAmount + cess,
		}
	}
	return out
}

// Encode serializes the breakdown as a JSON object.
func (b Breakdown) Encode() (string, error) {
	if b == nil {
		b = Breakdown{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode tax breakdown: %w", err)
	}
	return string(raw), nil
}

// ParseBreakdown decodes a stored breakdown.
func ParseBreakdown(raw string) (Breakdown, error) {
	var out Breakdown
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxDetail, err)
	}
	return out, nil
}

// ValidTaxDetail reports whether a stored breakdown is well-formed JSON.
func ValidTaxDetail(raw string) bool {
	return json.Valid([]byte(raw))
}
