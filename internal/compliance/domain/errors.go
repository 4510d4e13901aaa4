package domain

import "errors"

var (
	ErrInvalidTransaction   = errors.New("invalid_gst_transaction")
	ErrInvalidGSTIN         = errors.New("invalid_gstin")
	ErrTaxDetailMismatch    = errors.New("item_wise_tax_detail_mismatch")
	ErrJurisdictionMismatch = errors.New("gst_jurisdiction_mismatch")
)
