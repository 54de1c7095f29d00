package api

import (
	"context"
	"errors"
	"net/http"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/feedback"
	"gymdesk/internal/domain/fitnessclass"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/membershipplan"
	"gymdesk/internal/domain/payment"
)

// Collection paths on the backend.
const (
	PathInvoices   = "invoices/"
	PathPayments   = "payments/"
	PathBookings   = "bookings/"
	PathAttendance = "attendances/"
	PathClasses    = "fitness-classes/"
	PathPlans      = "membership-plans/"
	PathFeedback   = "feedbacks/"
	PathLogin      = "auth/login/"
	PathMe         = "auth/me/"
	PathRegister   = "auth/register/"
)

// ErrNoToken is returned when a login response carries no access token.
var ErrNoToken = errors.New("login response carried no access token")

// Backend groups the typed resources of the gym API.
type Backend struct {
	Client     *Client
	Invoices   Resource[invoice.Invoice]
	Payments   Resource[payment.Payment]
	Bookings   Resource[booking.Booking]
	Attendance Resource[attendance.Attendance]
	Classes    Resource[fitnessclass.FitnessClass]
	Plans      Resource[membershipplan.MembershipPlan]
	Feedback   Resource[feedback.Feedback]
}

// NewBackend binds every collection to c.
func NewBackend(c *Client) *Backend {
	return &Backend{
		Client:     c,
		Invoices:   NewResource[invoice.Invoice](c, PathInvoices),
		Payments:   NewResource[payment.Payment](c, PathPayments),
		Bookings:   NewResource[booking.Booking](c, PathBookings),
		Attendance: NewResource[attendance.Attendance](c, PathAttendance),
		Classes:    NewResource[fitnessclass.FitnessClass](c, PathClasses),
		Plans:      NewResource[membershipplan.MembershipPlan](c, PathPlans),
		Feedback:   NewResource[feedback.Feedback](c, PathFeedback),
	}
}

// LoginResult is a successful login.
type LoginResult struct {
	Token string
	User  account.User
}

type loginResponse struct {
	Access string       `json:"access"`
	Token  string       `json:"token"`
	User   account.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the user profile.
// PRE: creds validated
// POST: Returns a non-empty token; the profile is fetched from auth/me/ when the
// login response does not include it
func (b *Backend) Login(ctx context.Context, creds account.Credentials) (LoginResult, error) {
	var resp loginResponse
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := b.Client.Do(ctx, http.MethodPost, PathLogin, "", nil, body, &resp); err != nil {
		return LoginResult{}, err
	}
	token := resp.Access
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return LoginResult{}, ErrNoToken
	}
	user := resp.User
	if user.Email == "" {
		me, err := b.Me(ctx, token)
		if err != nil {
			return LoginResult{}, err
		}
		user = me
	}
	return LoginResult{Token: token, User: user}, nil
}

// Me returns the profile for a token.
func (b *Backend) Me(ctx context.Context, token string) (account.User, error) {
	var u account.User
	err := b.Client.Do(ctx, http.MethodGet, PathMe, token, nil, nil, &u)
	return u, err
}

// Register creates a member account.
func (b *Backend) Register(ctx context.Context, reg account.Registration) error {
	return b.Client.Do(ctx, http.MethodPost, PathRegister, "", nil, reg, nil)
}
