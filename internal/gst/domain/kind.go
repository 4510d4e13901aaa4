package domain

import "strings"

// TaxKind is the GST component a tax row or amount belongs to.
type TaxKind string

const (
	TaxKindUnknown TaxKind = ""
	TaxKindCGST    TaxKind = "cgst"
	TaxKindSGST    TaxKind = "sgst"
	TaxKindIGST    TaxKind = "igst"
)

// KindMatcher maps lower-case label fragments to a tax kind.
type KindMatcher struct {
	Kind     TaxKind
	Patterns []string
}

// DefaultKindMatchers is evaluated in order; UTGST rows book against SGST.
var DefaultKindMatchers = []KindMatcher{
	{Kind: TaxKindCGST, Patterns: []string{"cgst"}},
	{Kind: TaxKindSGST, Patterns: []string{"sgst", "utgst"}},
	{Kind: TaxKindIGST, Patterns: []string{"igst"}},
}

// ClassifyTaxRow matches a free-text tax label against matchers, first match wins.
//
// Classification depends on account naming: a renamed account head or a label
// containing more than one kind name is classified by whichever matcher comes first.
func ClassifyTaxRow(label string, matchers []KindMatcher) TaxKind {
	if len(matchers) == 0 {
		matchers = DefaultKindMatchers
	}
	normalized := strings.ToLower(label)
	for _, m := range matchers {
		for _, pattern := range m.Patterns {
			if pattern != "" && strings.Contains(normalized, strings.ToLower(pattern)) {
				return m.Kind
			}
		}
	}
	return TaxKindUnknown
}
