package http

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"finmgmt/internal/domain/financial"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/shared/middleware"
	"finmgmt/internal/shared/money"
	"finmgmt/internal/web"
)

const (
	TabDashboard    = "dashboard"
	TabTransactions = "transactions"
	TabPayments     = "payments"
)

var templateFuncs = template.FuncMap{
	"money": money.Format,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

// HandleHealth returns a simple health check response.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// PageHandler renders the financial management pages.
type PageHandler struct {
	transactions TransactionService
	payments     PaymentService
	summaries    SummaryService
	currency     string

	tmpl     *template.Template
	tmplErr  error
	tmplOnce sync.Once
}

func NewPageHandler(transactions TransactionService, payments PaymentService, summaries SummaryService, currency string) *PageHandler {
	return &PageHandler{
		transactions: transactions,
		payments:     payments,
		summaries:    summaries,
		currency:     currency,
	}
}

type pageData struct {
	Tab           string
	User          string
	Currency      string
	TransactionID string
	FormError     string
	State         financial.State
	Types         []transaction.Type
	Statuses      []transaction.Status
}

func (h *PageHandler) template() (*template.Template, error) {
	h.tmplOnce.Do(func() {
		h.tmpl, h.tmplErr = web.Parse(web.FinancialPage, templateFuncs)
		if h.tmplErr != nil {
			log.Printf("Failed to load financial page template: %v", h.tmplErr)
		}
	})
	return h.tmpl, h.tmplErr
}

// HandleFinancial renders /financial?tab=dashboard|transactions|payments.
func (h *PageHandler) HandleFinancial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := financial.NewStore(h.transactions, h.payments, h.summaries)
	data := h.newPageData(r)

	switch data.Tab {
	case TabTransactions:
		store.FetchTransactions(r.Context())
	case TabPayments:
		store.FetchPayments(r.Context(), data.TransactionID)
	default:
		data.Tab = TabDashboard
		store.FetchSummary(r.Context())
	}

	data.State = store.State()
	h.render(w, http.StatusOK, data)
}

// HandleCreateTransaction accepts the new transaction form.
func (h *PageHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := financial.NewStore(h.transactions, h.payments, h.summaries)
	data := h.newPageData(r)
	data.Tab = TabTransactions

	params, err := h.transactionFromForm(r)
	if err == nil {
		params.CreatedBy = actorFromRequest(r)
		_, err = store.AddTransaction(r.Context(), params)
	}
	if err != nil {
		data.FormError = err.Error()
		if len(store.State().Transactions) == 0 {
			store.FetchTransactions(r.Context())
		}
		data.State = store.State()
		h.render(w, http.StatusBadRequest, data)
		return
	}

	http.Redirect(w, r, "/financial?tab="+TabTransactions, http.StatusSeeOther)
}

func (h *PageHandler) newPageData(r *http.Request) pageData {
	data := pageData{
		Tab:           r.URL.Query().Get("tab"),
		Currency:      h.currency,
		TransactionID: r.URL.Query().Get("transactionId"),
		Types:         []transaction.Type{transaction.TypeReceivable, transaction.TypePayable},
		Statuses: []transaction.Status{
			transaction.StatusPending, transaction.StatusPaid,
			transaction.StatusOverdue, transaction.StatusCancelled,
		},
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		data.User = p.Name
	}
	return data
}

func (h *PageHandler) transactionFromForm(r *http.Request) (transaction.CreateParams, error) {
	if err := r.ParseForm(); err != nil {
		return transaction.CreateParams{}, err
	}
	form := r.PostForm

	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Get("amount")), 64)
	if err != nil {
		return transaction.CreateParams{}, transaction.ErrInvalidAmount
	}
	dueDate, err := parseDate("dueDate", form.Get("dueDate"))
	if err != nil {
		return transaction.CreateParams{}, err
	}
	issueDate, err := parseDate("issueDate", form.Get("issueDate"))
	if err != nil {
		return transaction.CreateParams{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(form.Get("currency")))
	if currency == "" {
		currency = h.currency
	}
	status := transaction.Status(form.Get("status"))
	if status == "" {
		status = transaction.StatusPending
	}

	params := transaction.CreateParams{
		Type:            transaction.Type(form.Get("type")),
		Status:          status,
		ReferenceNumber: strings.TrimSpace(form.Get("referenceNumber")),
		Description:     strings.TrimSpace(form.Get("description")),
		Amount:          amount,
		Currency:        currency,
		DueDate:         dueDate,
		IssueDate:       issueDate,
		Entity: transaction.Entity{
			ID:   strings.TrimSpace(form.Get("entityId")),
			Type: form.Get("entityType"),
			Name: strings.TrimSpace(form.Get("entityName")),
		},
	}
	if notes := strings.TrimSpace(form.Get("notes")); notes != "" {
		params.Notes = &notes
	}
	return params, nil
}

func (h *PageHandler) render(w http.ResponseWriter, status int, data pageData) {
	tmpl, err := h.template()
	if err != nil {
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("Error rendering financial page: %v", err)
	}
}
