package projections

import (
	"context"

	"gymdesk/internal/application/listutil"
	"gymdesk/internal/domain/booking"
)

var bookingScreen = screen[booking.Booking]{
	matches: func(b booking.Booking, fp listutil.FilterParams, q ListQuery) bool {
		return ownedBy(q, b.Member) &&
			listutil.MatchesSearch(fp.Search, b.Member.Name, b.Member.Email, b.FitnessClass.Name) &&
			listutil.MatchesEnum(fp.Filters["status"], b.Status) &&
			fp.Range.Contains(b.BookedAt)
	},
	sorters: map[string]func(a, b booking.Booking) int{
		"member":    func(a, b booking.Booking) int { return byText(a.Member.Name, b.Member.Name) },
		"class":     func(a, b booking.Booking) int { return byText(a.FitnessClass.Name, b.FitnessClass.Name) },
		"status":    func(a, b booking.Booking) int { return byText(a.Status, b.Status) },
		"booked_at": func(a, b booking.Booking) int { return byTime(a.BookedAt, b.BookedAt) },
	},
}

// BookingSortColumns and BookingFilterKeys are the query keys the bookings screen accepts.
var (
	BookingSortColumns = sortKeys(bookingScreen)
	BookingFilterKeys  = []string{"status"}
)

// GetBookingListDeps holds dependencies for GetBookingList.
type GetBookingListDeps struct {
	Bookings BookingLister
}

// QueryGetBookingList filters bookings by member/class search, status and booked_at range.
// PRE: q.Params parsed with BookingSortColumns and BookingFilterKeys
// POST: Returns one page of matching rows
func QueryGetBookingList(ctx context.Context, q ListQuery, deps GetBookingListDeps) (ListResult[booking.Booking], error) {
	return runList(ctx, deps.Bookings, q, bookingScreen)
}
