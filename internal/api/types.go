package api

import "fmt"

// Expense status values as reported by the server.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// User is a member of the group. Lifecycle (approval, activation, removal)
// is owned by the server; the client only renders the flags.
type User struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	IsApproved bool   `json:"is_approved"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// FullName returns the display name used across the UI.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the payload for POST /users.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// ExpenseParticipant is one participant's equal share of an expense together
// with their approval flag.
type ExpenseParticipant struct {
	UserID      int64   `json:"user_id"`
	ShareAmount string  `json:"share_amount"`
	Approved    bool    `json:"approved"`
	ApprovedAt  *string `json:"approved_at"`
}

// Expense is a shared expense. Shares sum to the amount and status stays
// "pending" until every participant has approved; both invariants are
// enforced server-side.
type Expense struct {
	ID           int64                `json:"id"`
	PayerID      int64                `json:"payer_id"`
	Amount       string               `json:"amount"`
	Description  string               `json:"description"`
	ExpenseDate  string               `json:"expense_date"` // Gregorian ISO YYYY-MM-DD
	ShamsiYear   int                  `json:"shamsi_year"`
	ShamsiMonth  int                  `json:"shamsi_month"`
	Status       string               `json:"status"`
	CreatedAt    string               `json:"created_at"`
	Participants []ExpenseParticipant `json:"participants"`
}

// ApprovedCount returns how many participants have approved the expense.
func (e *Expense) ApprovedCount() int {
	n := 0
	for _, p := range e.Participants {
		if p.Approved {
			n++
		}
	}
	return n
}

// Participant returns the participant entry for the given user, or nil when
// the user is not part of this expense.
func (e *Expense) Participant(userID int64) *ExpenseParticipant {
	for i := range e.Participants {
		if e.Participants[i].UserID == userID {
			return &e.Participants[i]
		}
	}
	return nil
}

// ExpenseCreate is the payload for POST /expenses.
type ExpenseCreate struct {
	Amount             string  `json:"amount"`
	Description        string  `json:"description,omitempty"`
	ExpenseDate        string  `json:"expense_date"`
	ParticipantUserIDs []int64 `json:"participant_user_ids"`
}

// ExpenseApproveResponse is the result of POST /expenses/{id}/approve.
type ExpenseApproveResponse struct {
	ExpenseID     int64  `json:"expense_id"`
	UserID        int64  `json:"user_id"`
	Approved      bool   `json:"approved"`
	ExpenseStatus string `json:"expense_status"`
}

// Payment is a directed transfer between two members, immutable once created.
type Payment struct {
	ID          int64  `json:"id"`
	FromUserID  int64  `json:"from_user_id"`
	ToUserID    int64  `json:"to_user_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	PaymentDate string `json:"payment_date"` // Gregorian ISO YYYY-MM-DD
	ShamsiYear  int    `json:"shamsi_year"`
	ShamsiMonth int    `json:"shamsi_month"`
	CreatedAt   string `json:"created_at"`
}

// PaymentCreate is the payload for POST /payments.
type PaymentCreate struct {
	ToUserID    int64  `json:"to_user_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	PaymentDate string `json:"payment_date"`
}

// TransferSuggestion is one edge of the server's minimal transfer set.
type TransferSuggestion struct {
	FromUserID int64  `json:"from_user_id"`
	ToUserID   int64  `json:"to_user_id"`
	Amount     string `json:"amount"`
}

// BalanceEntry is a signed per-counterparty balance for the current user.
type BalanceEntry struct {
	UserID int64  `json:"user_id"`
	Amount string `json:"amount"`
}

// SettlementReport is the server-computed settlement snapshot for one Jalali
// month. The client treats it as opaque derived data and only renders it.
type SettlementReport struct {
	ShamsiYear  int                  `json:"shamsi_year"`
	ShamsiMonth int                  `json:"shamsi_month"`
	Transfers   []TransferSuggestion `json:"transfers"`
	MyBalances  []BalanceEntry       `json:"my_balances,omitempty"`
}

// Pagination carries the list metadata the server returns in response
// headers. Missing headers leave the zero value.
type Pagination struct {
	TotalCount int
	TotalPages int
}

// NameOf resolves a user id to a display name against an already-fetched user
// list, falling back to "#id" for unknown ids.
func NameOf(users []User, id int64) string {
	for i := range users {
		if users[i].ID == id {
			return users[i].FullName()
		}
	}
	return fmt.Sprintf("#%d", id)
}
