package domain

import "errors"

var (
	ErrInvalidTaxDetail = errors.New("invalid_item_wise_tax_detail")
	ErrNilDocument      = errors.New("nil_document")
)
