package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the issuing entity; its GSTIN carries the supplier state code.
type Company struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null;uniqueIndex"`
	GSTIN     string       `gorm:"column:gstin;type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Company) TableName() string { return "companies" }

// Classification is the place-of-supply outcome for a document.
type Classification string

const (
	InterState Classification = "inter_state"
	IntraState Classification = "intra_state"
)

func (c Classification) IsInterState() bool {
	return c != IntraState
}

// StateCode returns the leading two characters of a GSTIN.
func StateCode(gstin string) string {
	return gstin[:min(2, len(gstin))]
}
