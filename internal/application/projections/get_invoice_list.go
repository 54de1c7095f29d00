package projections

import (
	"cmp"
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/invoice"
)

var invoiceScreen = screen[invoice.Invoice]{
	matches: func(inv invoice.Invoice, fp listutil.FilterParams, q ListQuery) bool {
		return ownedBy(q, inv.Member) &&
			listutil.MatchesSearch(fp.Search, inv.Number, inv.Member.Name, inv.Member.Email) &&
			listutil.MatchesEnum(fp.Filters["status"], inv.Status) &&
			fp.Range.Contains(dateInZone(inv.IssueDate, q.Loc))
	},
	sorters: map[string]func(a, b invoice.Invoice) int{
		"number":     func(a, b invoice.Invoice) int { return byText(a.Number, b.Number) },
		"member":     func(a, b invoice.Invoice) int { return byText(a.Member.Name, b.Member.Name) },
		"issue_date": func(a, b invoice.Invoice) int { return byTime(a.IssueDate.Time, b.IssueDate.Time) },
		"due_date":   func(a, b invoice.Invoice) int { return byTime(a.DueDate.Time, b.DueDate.Time) },
		"total":      func(a, b invoice.Invoice) int { return cmp.Compare(a.TotalCents, b.TotalCents) },
		"status":     func(a, b invoice.Invoice) int { return byText(a.Status, b.Status) },
	},
}

// InvoiceSortColumns and InvoiceFilterKeys are the query keys the invoices screen accepts.
var (
	InvoiceSortColumns = sortKeys(invoiceScreen)
	InvoiceFilterKeys  = []string{"status"}
)

// GetInvoiceListDeps holds dependencies for GetInvoiceList.
type GetInvoiceListDeps struct {
	Invoices InvoiceLister
}

// QueryGetInvoiceList filters invoices by number/member search, status and issue date.
// PRE: q.Params parsed with InvoiceSortColumns and InvoiceFilterKeys
// POST: Returns one page of matching rows
// INVARIANT: issue dates are calendar dates compared in the display zone
func QueryGetInvoiceList(ctx context.Context, q ListQuery, deps GetInvoiceListDeps) (ListResult[invoice.Invoice], error) {
	return runList(ctx, deps.Invoices, q, invoiceScreen)
}
