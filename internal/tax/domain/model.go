package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ItemTaxTemplate is company-scoped master data carrying one combined GST
// percentage (e.g. 18 for CGST 9 + SGST 9, or IGST 18).
type ItemTaxTemplate struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	Name    string       `gorm:"type:text;not null;uniqueIndex"`
	Title   string       `gorm:"type:text"`
	Company string       `gorm:"type:text;not null;index"`
	GSTRate *float64     `gorm:"column:gst_rate;type:numeric(6,3)"` // nil when unset

	Disabled bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ItemTaxTemplate) TableName() string { return "item_tax_templates" }

func (t *ItemTaxTemplate) Validate() error {
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Company == "" {
		return ErrInvalidCompany
	}
	if t.GSTRate != nil && (*t.GSTRate < 0 || *t.GSTRate > 100) {
		return ErrInvalidTaxRate
	}
	return nil
}

// Rate returns the configured percentage, zero when unset.
func (t *ItemTaxTemplate) Rate() float64 {
	if t == nil || t.GSTRate == nil {
		return 0
	}
	return *t.GSTRate
}

// Item is the product master; only fields used for GST are kept.
type Item struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ItemCode   string       `gorm:"type:text;not null;uniqueIndex"`
	ItemName   string       `gorm:"type:text"`
	GSTHSNCode string       `gorm:"column:gst_hsn_code;type:text"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Item) TableName() string { return "items" }

// ItemTax links an item to a tax template. Rows are ordered by Idx and only the
// first one is used; ValidFrom is stored but not evaluated.
type ItemTax struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	ItemCode        string       `gorm:"type:text;not null;index"`
	Idx             int          `gorm:"not null;default:0"`
	ItemTaxTemplate string       `gorm:"column:item_tax_template;type:text;not null"`
	ValidFrom       *time.Time
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ItemTax) TableName() string { return "item_taxes" }

// FallbackReason explains why a resolution carries no usable rate.
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackNoTemplate  FallbackReason = "no_template"
	FallbackZeroRate    FallbackReason = "zero_rate"
	FallbackLookupError FallbackReason = "lookup_error"
)

// Resolution is the outcome of resolving an item's GST rate.
type Resolution struct {
	TemplateName string         `json:"template_name"`
	Rate         float64        `json:"rate"`
	Fallback     FallbackReason `json:"fallback,omitempty"`
}

// HasTemplate reports whether a template was found for the item.
func (r Resolution) HasTemplate() bool {
	return r.TemplateName != ""
}
