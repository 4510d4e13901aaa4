package domain

import "context"

// DoctypeSalesInvoice is the only document type the GST hooks act on.
const DoctypeSalesInvoice = "Sales Invoice"

// DocStatus mirrors the host lifecycle: draft, submitted, cancelled.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// Flags are per-document switches read by the host and by compliance providers.
type Flags struct {
	SkipGSTValidations              bool `json:"skip_gst_validations"`
	IgnoreMandatory                 bool `json:"ignore_mandatory"`
	IgnoreValidateUpdateAfterSubmit bool `json:"ignore_validate_update_after_submit"`
	DontUpdateIfMissing             bool `json:"dont_update_if_missing"`
	DontRecalculateTaxes            bool `json:"dont_recalculate_taxes"`
}

// SalesInvoice is the in-memory view of a host Sales Invoice or Credit Note.
// Base amounts are numerically equal to primary currency amounts.
type SalesInvoice struct {
	Doctype             string    `json:"doctype"`
	Name                string    `json:"name"`
	Company             string    `json:"company"`
	CustomerGSTIN       string    `json:"customer_gstin"`
	BillingAddressGSTIN string    `json:"billing_address_gstin"`
	IsReturn            bool      `json:"is_return"`
	ReturnAgainst       string    `json:"return_against"`
	DocStatus           DocStatus `json:"docstatus"`

	Items []*Item   `json:"items"`
	Taxes []*TaxRow `json:"taxes"`

	NetTotal  float64 `json:"net_total"`
	BaseTotal float64 `json:"base_total"`

	TotalTaxesAndCharges     float64 `json:"total_taxes_and_charges"`
	BaseTotalTaxesAndCharges float64 `json:"base_total_taxes_and_charges"`
	GrandTotal               float64 `json:"grand_total"`
	BaseGrandTotal           float64 `json:"base_grand_total"`
	RoundingAdjustment       float64 `json:"rounding_adjustment"`
	BaseRoundingAdjustment   float64 `json:"base_rounding_adjustment"`
	RoundedTotal             float64 `json:"rounded_total"`
	BaseRoundedTotal         float64 `json:"base_rounded_total"`
	OutstandingAmount        float64 `json:"outstanding_amount"`

	ItemWiseTaxDetail string `json:"item_wise_tax_detail"`

	Flags         Flags                 `json:"flags"`
	Recalculation RecalculationStrategy `json:"recalculation"`
}

// Item is one line of a sales document.
type Item struct {
	ItemCode   string  `json:"item_code"`
	HSNCode    string  `json:"hsn_code"`
	GSTHSNCode string  `json:"gst_hsn_code"`
	Qty        float64 `json:"qty"`
	Rate       float64 `json:"rate"`
	NetAmount  float64 `json:"net_amount"`

	CGSTAmount float64 `json:"cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount"`
	IGSTAmount float64 `json:"igst_amount"`
	CGSTRate   float64 `json:"cgst_rate"`
	SGSTRate   float64 `json:"sgst_rate"`
	IGSTRate   float64 `json:"igst_rate"`
}

// ClassificationCode returns the HSN/SAC code used to key the tax breakdown.
// Values are used as stored; " 8471" and "8471" are different keys.
func (i *Item) ClassificationCode() string {
	if i.HSNCode != "" {
		return i.HSNCode
	}
	return i.GSTHSNCode
}

// TaxRow is one tax ledger line of a sales document.
type TaxRow struct {
	GSTTaxType        string `json:"gst_tax_type"`
	AccountHead       string `json:"account_head"`
	ItemWiseTaxDetail string `json:"item_wise_tax_detail"`
	DontRecomputeTax  int    `json:"dont_recompute_tax"`

	TaxAmount                        float64 `json:"tax_amount"`
	BaseTaxAmount                    float64 `json:"base_tax_amount"`
	TaxAmountAfterDiscountAmount     float64 `json:"tax_amount_after_discount_amount"`
	BaseTaxAmountAfterDiscountAmount float64 `json:"base_tax_amount_after_discount_amount"`
	Total                            float64 `json:"total"`
	BaseTotal                        float64 `json:"base_total"`
}

// Label is the free-text kind label: gst_tax_type, falling back to account_head.
func (t *TaxRow) Label() string {
	if t.GSTTaxType != "" {
		return t.GSTTaxType
	}
	return t.AccountHead
}

// IsSalesInvoice reports whether the document is a Sales Invoice.
func (d *SalesInvoice) IsSalesInvoice() bool {
	return d != nil && d.Doctype == DoctypeSalesInvoice
}

// IsCreditNote reports whether the document is a return raised against another invoice.
func (d *SalesInvoice) IsCreditNote() bool {
	return d.IsReturn && d.ReturnAgainst != ""
}

// RecipientGSTIN prefers the billing address GSTIN over the customer GSTIN,
// returning the stored value untrimmed.
func (d *SalesInvoice) RecipientGSTIN() string {
	if d.BillingAddressGSTIN != "" {
		return d.BillingAddressGSTIN
	}
	return d.CustomerGSTIN
}

// HasTaxDetailRows reports whether any tax row carries a stored breakdown.
func (d *SalesInvoice) HasTaxDetailRows() bool {
	for _, row := range d.Taxes {
		if row != nil && row.ItemWiseTaxDetail != "" {
			return true
		}
	}
	return false
}

// TotalsCalculator is the host's own taxes-and-totals routine.
type TotalsCalculator interface {
	CalculateTaxesAndTotals(ctx context.Context, doc *SalesInvoice) error
}
