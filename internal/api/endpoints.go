package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Login exchanges credentials for a bearer token. It does not store the
// token; the session layer owns that.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	var token Token
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil, LoginRequest{Username: username, Password: password}, false, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a new (by default unapproved) account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodPost, "/users", nil, req, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every member of the group.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := c.do(ctx, http.MethodGet, "/users", nil, nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PendingUserApprovals returns the accounts still waiting for admin approval.
func (c *Client) PendingUserApprovals(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := c.do(ctx, http.MethodGet, "/users/pending-approvals", nil, nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ApproveUser marks a user approved. Admin-only by server convention.
func (c *Client) ApproveUser(ctx context.Context, id int64) (*User, error) {
	var user User
	body := map[string]bool{"is_approved": true}
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/approve", id), nil, body, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserActive toggles a user's active flag. Admin-only by server convention.
func (c *Client) SetUserActive(ctx context.Context, id int64, active bool) (*User, error) {
	var user User
	body := map[string]bool{"is_active": active}
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/active", id), nil, body, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account. The server only permits removing accounts
// that are neither admin nor approved.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, true, nil)
	return err
}

// ExpenseQuery selects a month-scoped, paginated expense listing.
type ExpenseQuery struct {
	Year    int            // Jalali year
	Month   int            // Jalali month 1..12
	Scope   string         // optional server-side scope filter
	Search  string         // optional free-text filter
	Page    int            // 1-based, 0 means server default
	PerPage int            // 0 means server default
}

func (q ExpenseQuery) values() url.Values {
	v := url.Values{}
	if q.Year != 0 {
		v.Set("shamsi_year", strconv.Itoa(q.Year))
	}
	if q.Month != 0 {
		v.Set("shamsi_month", strconv.Itoa(q.Month))
	}
	if q.Scope != "" {
		v.Set("scope", q.Scope)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// ListExpenses returns the expenses matching the query along with the
// pagination metadata from the response headers.
func (c *Client) ListExpenses(ctx context.Context, q ExpenseQuery) ([]Expense, Pagination, error) {
	var expenses []Expense
	headers, err := c.do(ctx, http.MethodGet, "/expenses", q.values(), nil, true, &expenses)
	if err != nil {
		return nil, Pagination{}, err
	}
	return expenses, paginationFrom(headers), nil
}

// CreateExpense records a new shared expense. Duplicate participant ids are
// collapsed before the request; a participant cannot appear twice.
func (c *Client) CreateExpense(ctx context.Context, req ExpenseCreate) (*Expense, error) {
	req.ParticipantUserIDs = dedupeIDs(req.ParticipantUserIDs)
	var expense Expense
	if _, err := c.do(ctx, http.MethodPost, "/expenses", nil, req, true, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// ApproveExpense approves the current user's share of an expense.
func (c *Client) ApproveExpense(ctx context.Context, id int64) (*ExpenseApproveResponse, error) {
	var resp ExpenseApproveResponse
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/expenses/%d/approve", id), nil, nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteExpense removes an expense. Admin-only and only while the expense is
// not yet fully approved; both enforced server-side.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), nil, nil, true, nil)
	return err
}

// PendingMyApprovals returns the expenses still waiting for the current
// user's approval.
func (c *Client) PendingMyApprovals(ctx context.Context) ([]Expense, error) {
	var expenses []Expense
	if _, err := c.do(ctx, http.MethodGet, "/expenses/pending-my-approvals", nil, nil, true, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// PaymentQuery selects a month-scoped, paginated payment listing.
type PaymentQuery struct {
	Year    int
	Month   int
	Scope   string
	Page    int
	PerPage int
}

func (q PaymentQuery) values() url.Values {
	return ExpenseQuery{Year: q.Year, Month: q.Month, Scope: q.Scope, Page: q.Page, PerPage: q.PerPage}.values()
}

// ListPayments returns the payments matching the query along with pagination
// metadata.
func (c *Client) ListPayments(ctx context.Context, q PaymentQuery) ([]Payment, Pagination, error) {
	var payments []Payment
	headers, err := c.do(ctx, http.MethodGet, "/payments", q.values(), nil, true, &payments)
	if err != nil {
		return nil, Pagination{}, err
	}
	return payments, paginationFrom(headers), nil
}

// CreatePayment records a direct transfer to another member.
func (c *Client) CreatePayment(ctx context.Context, req PaymentCreate) (*Payment, error) {
	var payment Payment
	if _, err := c.do(ctx, http.MethodPost, "/payments", nil, req, true, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetSettlement fetches the server-computed settlement report for a Jalali
// month.
func (c *Client) GetSettlement(ctx context.Context, year, month int, scope string) (*SettlementReport, error) {
	v := url.Values{}
	v.Set("shamsi_year", strconv.Itoa(year))
	v.Set("shamsi_month", strconv.Itoa(month))
	if scope != "" {
		v.Set("scope", scope)
	}
	var report SettlementReport
	if _, err := c.do(ctx, http.MethodGet, "/settlements", v, nil, true, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
