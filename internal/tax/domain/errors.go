package domain

import "errors"

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidTaxRate = errors.New("invalid_tax_rate")
	ErrDuplicateName  = errors.New("duplicate_name")
)
