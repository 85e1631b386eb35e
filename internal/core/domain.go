package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

const (
	RecurringReceivable RecurringType = "receivable"
	RecurringPayable    RecurringType = "payable"
)

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

const (
	ReceivablePending  ReceivableStatus = "pending"
	ReceivableReceived ReceivableStatus = "received"
	ReceivableOverdue  ReceivableStatus = "overdue"
)

const (
	PayablePending PayableStatus = "pending"
	PayablePaid    PayableStatus = "paid"
	PayableOverdue PayableStatus = "overdue"
)

const (
	ExpensePending ExpenseStatus = "pending"
	ExpensePaid    ExpenseStatus = "paid"
	ExpenseOverdue ExpenseStatus = "overdue"
)

const (
	Credit MovementType = "credit"
	Debit  MovementType = "debit"
)

// RecurringSuffix marks descriptions of records generated from a recurring template.
const RecurringSuffix = " (Recorrente)"

const maxDescriptionLen = 200

type (
	Frequency        string
	RecurringType    string
	InvoiceStatus    string
	ReceivableStatus string
	PayableStatus    string
	ExpenseStatus    string
	MovementType     string

	// Date is a calendar date at UTC midnight. The zero value means "unset".
	Date struct {
		time.Time
	}

	// Scope selects the tenant and, optionally, a single customer.
	// The customer filter applies to invoices, receivables and payables.
	Scope struct {
		CompanyID  string
		CustomerID string
	}

	Company struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CNPJ      string    `json:"cnpj"`
		OwnerID   string    `json:"owner_id"`
		CreatedAt time.Time `json:"created_at"`
	}

	User struct {
		ID           string `json:"id"`
		CompanyID    string `json:"company_id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
	}

	// Party is a customer or a supplier.
	Party struct {
		ID        string `json:"id"`
		CompanyID string `json:"company_id"`
		Name      string `json:"name"`
		Email     string `json:"email,omitempty"`
		Phone     string `json:"phone,omitempty"`
		Document  string `json:"document,omitempty"`
	}

	Customer = Party
	Supplier = Party

	Invoice struct {
		ID          string          `json:"id"`
		CompanyID   string          `json:"company_id"`
		CustomerID  string          `json:"customer_id,omitempty"`
		Number      string          `json:"number"`
		Status      InvoiceStatus   `json:"status"`
		Subtotal    decimal.Decimal `json:"subtotal"`
		Discount    decimal.Decimal `json:"discount"`
		TaxAmount   decimal.Decimal `json:"tax_amount"`
		Total       decimal.Decimal `json:"total"`
		IssueDate   Date            `json:"issue_date"`
		DueDate     Date            `json:"due_date"`
		PaymentDate Date            `json:"payment_date"`
	}

	Expense struct {
		ID            string          `json:"id"`
		CompanyID     string          `json:"company_id"`
		SupplierID    string          `json:"supplier_id,omitempty"`
		Description   string          `json:"description"`
		Category      ExpenseCategory `json:"category"`
		Amount        decimal.Decimal `json:"amount"`
		ExpenseDate   Date            `json:"expense_date"`
		Status        ExpenseStatus   `json:"status"`
		PaymentMethod string          `json:"payment_method,omitempty"`
	}

	Receivable struct {
		ID            string           `json:"id"`
		CompanyID     string           `json:"company_id"`
		CustomerID    string           `json:"customer_id,omitempty"`
		Description   string           `json:"description"`
		Amount        decimal.Decimal  `json:"amount"`
		DueDate       Date             `json:"due_date"`
		PaymentDate   Date             `json:"payment_date"`
		Status        ReceivableStatus `json:"status"`
		PaymentMethod string           `json:"payment_method,omitempty"`
		RecurringID   string           `json:"recurring_id,omitempty"`
	}

	Payable struct {
		ID            string          `json:"id"`
		CompanyID     string          `json:"company_id"`
		SupplierID    string          `json:"supplier_id,omitempty"`
		CustomerID    string          `json:"customer_id,omitempty"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount"`
		DueDate       Date            `json:"due_date"`
		PaymentDate   Date            `json:"payment_date"`
		Status        PayableStatus   `json:"status"`
		PaymentMethod string          `json:"payment_method,omitempty"`
		RecurringID   string          `json:"recurring_id,omitempty"`
	}

	BankAccount struct {
		ID             string          `json:"id"`
		CompanyID      string          `json:"company_id"`
		Name           string          `json:"name"`
		BankName       string          `json:"bank_name"`
		AccountNumber  string          `json:"account_number,omitempty"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
		CurrentBalance decimal.Decimal `json:"current_balance"`
		Active         bool            `json:"active"`
	}

	BankMovement struct {
		ID          string          `json:"id"`
		CompanyID   string          `json:"company_id"`
		AccountID   string          `json:"bank_account_id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        MovementType    `json:"type"`
		Date        Date            `json:"movement_date"`
		Reconciled  bool            `json:"reconciled"`
	}

	RecurringTransaction struct {
		ID            string          `json:"id"`
		CompanyID     string          `json:"company_id"`
		Type          RecurringType   `json:"type"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount"`
		Frequency     Frequency       `json:"frequency"`
		StartDate     Date            `json:"start_date"`
		EndDate       Date            `json:"end_date"`
		LastGenerated Date            `json:"last_generated"`
		CustomerID    string          `json:"customer_id,omitempty"`
		SupplierID    string          `json:"supplier_id,omitempty"`
		Category      string          `json:"category,omitempty"`
		PaymentMethod string          `json:"payment_method,omitempty"`
		Active        bool            `json:"active"`
	}

	// Occurrence is one materialized instance of a recurring transaction.
	// Exactly one of Receivable and Payable is set.
	Occurrence struct {
		RecurringID string
		Date        Date
		Receivable  *Receivable
		Payable     *Payable
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyName          = errors.New("empty name")
	ErrMissingCompany     = errors.New("missing company")
	ErrMissingAccount     = errors.New("missing bank account")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEndBeforeStart     = errors.New("end date must not be before start date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses YYYY-MM-DD. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// AddMonths uses calendar arithmetic, so day overflow normalizes (Jan 31 + 1 month = Mar 3 in non-leap years).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

// OnOrBefore reports whether d <= other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Quarterly, Annual:
		return true
	}
	return false
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

func (s ReceivableStatus) Valid() bool {
	switch s {
	case ReceivablePending, ReceivableReceived, ReceivableOverdue:
		return true
	}
	return false
}

// Outstanding reports whether the receivable still has to be collected.
func (s ReceivableStatus) Outstanding() bool {
	return s == ReceivablePending || s == ReceivableOverdue
}

func (s PayableStatus) Valid() bool {
	switch s {
	case PayablePending, PayablePaid, PayableOverdue:
		return true
	}
	return false
}

// Outstanding reports whether the payable still has to be paid.
func (s PayableStatus) Outstanding() bool {
	return s == PayablePending || s == PayableOverdue
}

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpensePending, ExpensePaid, ExpenseOverdue:
		return true
	}
	return false
}

func (t MovementType) Valid() bool {
	return t == Credit || t == Debit
}

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func validateNonNegative(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return checkAmount(d)
}

func validatePositive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return checkAmount(d)
}

func (p Party) Validate() error {
	if p.CompanyID == "" {
		return ErrMissingCompany
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i Invoice) Validate() error {
	if i.CompanyID == "" {
		return ErrMissingCompany
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	for _, v := range []decimal.Decimal{i.Subtotal, i.Discount, i.TaxAmount, i.Total} {
		if err := validateNonNegative(v); err != nil {
			return err
		}
	}
	return i.IssueDate.Validate()
}

func (e Expense) Validate() error {
	if e.CompanyID == "" {
		return ErrMissingCompany
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := validateNonNegative(e.Amount); err != nil {
		return err
	}
	return e.ExpenseDate.Validate()
}

func (r Receivable) Validate() error {
	if r.CompanyID == "" {
		return ErrMissingCompany
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := validateNonNegative(r.Amount); err != nil {
		return err
	}
	return r.DueDate.Validate()
}

func (p Payable) Validate() error {
	if p.CompanyID == "" {
		return ErrMissingCompany
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := validateNonNegative(p.Amount); err != nil {
		return err
	}
	return p.DueDate.Validate()
}

func (a BankAccount) Validate() error {
	if a.CompanyID == "" {
		return ErrMissingCompany
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	// Opening balances may be negative (overdrawn accounts).
	return checkAmount(a.InitialBalance)
}

// Delta is the signed balance change the movement applies to its account.
func (m BankMovement) Delta() decimal.Decimal {
	if m.Type == Debit {
		return m.Amount.Neg()
	}
	return m.Amount
}

func (m BankMovement) Validate() error {
	if m.CompanyID == "" {
		return ErrMissingCompany
	}
	if m.AccountID == "" {
		return ErrMissingAccount
	}
	if err := validateDescription(m.Description); err != nil {
		return err
	}
	if !m.Type.Valid() {
		return ErrInvalidType
	}
	if err := validatePositive(m.Amount); err != nil {
		return err
	}
	return m.Date.Validate()
}

func (rt RecurringTransaction) Validate() error {
	if rt.CompanyID == "" {
		return ErrMissingCompany
	}
	if rt.Type != RecurringReceivable && rt.Type != RecurringPayable {
		return ErrInvalidType
	}
	if !rt.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if err := validateDescription(rt.Description); err != nil {
		return err
	}
	// Generated records carry the suffix and must still fit.
	if utf8.RuneCountInString(rt.Description+RecurringSuffix) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if err := validatePositive(rt.Amount); err != nil {
		return err
	}
	if err := rt.StartDate.Validate(); err != nil {
		return err
	}
	if !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate.Time) {
		return ErrEndBeforeStart
	}
	return nil
}
