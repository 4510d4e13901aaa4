package domain

import (
	"context"

	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
)

// Entry point names, used for logging and metrics.
const (
	EntryValidateItemWiseTaxDetail = "validate_item_wise_tax_detail"
	EntryValidateTransaction       = "validate_transaction"
	EntrySetItemWiseTaxBreakup     = "set_item_wise_tax_breakup"
	EntryItemGSTDetailsUpdate      = "item_gst_details_update"
	EntryUpdateGSTDetails          = "update_gst_details"
)

// Provider is the compliance module's validation surface, called by the host
// around document validation.
type Provider interface {
	ValidateItemWiseTaxDetail(ctx context.Context, doc *sidomain.SalesInvoice) error
	ValidateTransaction(ctx context.Context, doc *sidomain.SalesInvoice, method string) error
	SetItemWiseTaxBreakup(ctx context.Context, doc *sidomain.SalesInvoice) error
	ItemGSTDetails() ItemGSTDetails
	UpdateGSTDetails(ctx context.Context, doc *sidomain.SalesInvoice, method string) error
}

// ItemGSTDetails refreshes per-line GST details on a document.
type ItemGSTDetails interface {
	Update(ctx context.Context, doc *sidomain.SalesInvoice) error
}

// Run calls every entry point in the order the host does on save.
func Run(ctx context.Context, p Provider, doc *sidomain.SalesInvoice, method string) error {
	if p == nil {
		return nil
	}
	if err := p.UpdateGSTDetails(ctx, doc, method); err != nil {
		return err
	}
	if details := p.ItemGSTDetails(); details != nil {
		if err := details.Update(ctx, doc); err != nil {
			return err
		}
	}
	if err := p.SetItemWiseTaxBreakup(ctx, doc); err != nil {
		return err
	}
	if err := p.ValidateItemWiseTaxDetail(ctx, doc); err != nil {
		return err
	}
	return p.ValidateTransaction(ctx, doc, method)
}
