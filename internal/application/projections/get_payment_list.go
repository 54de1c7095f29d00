package projections

import (
	"cmp"
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/payment"
)

var paymentScreen = screen[payment.Payment]{
	matches: func(p payment.Payment, fp listutil.FilterParams, _ ListQuery) bool {
		md := p.Metadata
		return listutil.MatchesSearch(fp.Search, p.Reference, md.Invoice, md.Booking, md.Subscription) &&
			listutil.MatchesEnum(fp.Filters["status"], p.Status) &&
			listutil.MatchesEnum(fp.Filters["payment_type"], md.PaymentType) &&
			fp.Range.Contains(optionalTime(p.PaidAt))
	},
	sorters: map[string]func(a, b payment.Payment) int{
		"reference": func(a, b payment.Payment) int { return byText(a.Reference, b.Reference) },
		"amount":    func(a, b payment.Payment) int { return cmp.Compare(a.AmountCents, b.AmountCents) },
		"status":    func(a, b payment.Payment) int { return byText(a.Status, b.Status) },
		"paid_at":   func(a, b payment.Payment) int { return byTime(optionalTime(a.PaidAt), optionalTime(b.PaidAt)) },
	},
}

// PaymentSortColumns and PaymentFilterKeys are the query keys the payments screen accepts.
var (
	PaymentSortColumns = sortKeys(paymentScreen)
	PaymentFilterKeys  = []string{"status", "payment_type"}
)

// GetPaymentListDeps holds dependencies for GetPaymentList.
type GetPaymentListDeps struct {
	Payments PaymentLister
}

// QueryGetPaymentList filters payments by reference search, status, type and paid_at range.
// PRE: q.Params parsed with PaymentSortColumns and PaymentFilterKeys
// POST: Returns one page of matching rows
// INVARIANT: an unpaid payment (nil paid_at) never matches a date range
func QueryGetPaymentList(ctx context.Context, q ListQuery, deps GetPaymentListDeps) (ListResult[payment.Payment], error) {
	return runList(ctx, deps.Payments, q, paymentScreen)
}
