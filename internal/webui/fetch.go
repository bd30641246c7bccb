package webui

import (
	"context"
	"fmt"

	"hamkharj/internal/api"
	"hamkharj/pkg/jalali"
)

// jalaliDate and monthName are template helpers.
func jalaliDate(iso string) string { return jalali.FormatISO(iso) }
func monthName(month int) string   { return jalali.MonthName(month) }

// seq feeds numeric select options (days, months) to the templates.
func seq(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func expenseCacheKey(q api.ExpenseQuery) string {
	return fmt.Sprintf("expenses|%d|%d|%s|%s|%d|%d", q.Year, q.Month, q.Scope, q.Search, q.Page, q.PerPage)
}

func paymentCacheKey(q api.PaymentQuery) string {
	return fmt.Sprintf("payments|%d|%d|%s|%d|%d", q.Year, q.Month, q.Scope, q.Page, q.PerPage)
}

func settlementCacheKey(year, month int, scope string) string {
	return fmt.Sprintf("settlement|%d|%d|%s", year, month, scope)
}

func (s *Server) getUsers(ctx context.Context) ([]api.User, error) {
	const key = "users|all"
	if users, ok := s.usersCache.Get(key); ok {
		return users, nil
	}
	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	s.usersCache.Set(key, users)
	return users, nil
}

func (s *Server) getPendingUsers(ctx context.Context) ([]api.User, error) {
	const key = "users|pending"
	if users, ok := s.usersCache.Get(key); ok {
		return users, nil
	}
	users, err := s.client.PendingUserApprovals(ctx)
	if err != nil {
		return nil, err
	}
	s.usersCache.Set(key, users)
	return users, nil
}

func (s *Server) getExpenses(ctx context.Context, q api.ExpenseQuery) (expensePage, error) {
	key := expenseCacheKey(q)
	if page, ok := s.expensesCache.Get(key); ok {
		return page, nil
	}
	items, pagination, err := s.client.ListExpenses(ctx, q)
	if err != nil {
		return expensePage{}, err
	}
	page := expensePage{Items: items, Page: pagination}
	s.expensesCache.Set(key, page)
	return page, nil
}

func (s *Server) getPayments(ctx context.Context, q api.PaymentQuery) (paymentPage, error) {
	key := paymentCacheKey(q)
	if page, ok := s.paymentsCache.Get(key); ok {
		return page, nil
	}
	items, pagination, err := s.client.ListPayments(ctx, q)
	if err != nil {
		return paymentPage{}, err
	}
	page := paymentPage{Items: items, Page: pagination}
	s.paymentsCache.Set(key, page)
	return page, nil
}

func (s *Server) getSettlement(ctx context.Context, year, month int, scope string) (*api.SettlementReport, error) {
	key := settlementCacheKey(year, month, scope)
	if rep, ok := s.settlementCache.Get(key); ok {
		return rep, nil
	}
	rep, err := s.client.GetSettlement(ctx, year, month, scope)
	if err != nil {
		return nil, err
	}
	s.settlementCache.Set(key, rep)
	return rep, nil
}

func (s *Server) getPendingMyApprovals(ctx context.Context) ([]api.Expense, error) {
	const key = "approvals|mine"
	if items, ok := s.pendingCache.Get(key); ok {
		return items, nil
	}
	items, err := s.client.PendingMyApprovals(ctx)
	if err != nil {
		return nil, err
	}
	s.pendingCache.Set(key, items)
	return items, nil
}

// invalidateExpenseData drops every cached view that an expense or payment
// mutation can change: lists, settlement totals and the approval queue.
func (s *Server) invalidateExpenseData() {
	s.expensesCache.Invalidate("expenses|")
	s.paymentsCache.Invalidate("payments|")
	s.settlementCache.Invalidate("settlement|")
	s.pendingCache.Invalidate("approvals|")
}

func (s *Server) invalidateUserData() {
	s.usersCache.Invalidate("users|")
}
