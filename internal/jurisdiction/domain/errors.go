package domain

import "errors"

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidGSTIN   = errors.New("invalid_gstin")
)
