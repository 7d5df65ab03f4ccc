package http

import (
	"time"

	"alphawealth/internal/core"
)

// Request and response shapes. Domain structs stay tag-free; the wire format
// lives here.

type accountRequest struct {
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Balance core.Money `json:"balance"`
	Color   string     `json:"color"`
}

func (req accountRequest) toDomain(userID, id string) core.Account {
	return core.Account{
		ID:      id,
		UserID:  userID,
		Name:    sanitizeInput(req.Name),
		Type:    core.AccountType(req.Type),
		Balance: req.Balance,
		Color:   sanitizeInput(req.Color),
	}
}

type accountResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Balance core.Money `json:"balance"`
	Color   string     `json:"color"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:      a.ID,
		Name:    a.Name,
		Type:    string(a.Type),
		Balance: a.Balance,
		Color:   a.Color,
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (req categoryRequest) toDomain(userID, id string) core.Category {
	return core.Category{
		ID:     id,
		UserID: userID,
		Name:   sanitizeInput(req.Name),
		Type:   core.CategoryType(req.Type),
		Color:  sanitizeInput(req.Color),
	}
}

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

type transactionRequest struct {
	AccountID   string     `json:"account_id"`
	CategoryID  string     `json:"category_id"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

func (req transactionRequest) toDomain(userID, id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
		Description: sanitizeInput(req.Description),
		Date:        req.Date,
	}
}

type transactionResponse struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"account_id"`
	CategoryID    string     `json:"category_id,omitempty"`
	Amount        core.Money `json:"amount"`
	Type          string     `json:"type"`
	Description   string     `json:"description,omitempty"`
	Date          core.Date  `json:"date"`
	AccountName   string     `json:"account_name,omitempty"`
	CategoryName  string     `json:"category_name,omitempty"`
	CategoryColor string     `json:"category_color,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		CategoryID:    t.CategoryID,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Description:   t.Description,
		Date:          t.Date,
		AccountName:   t.AccountName,
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
	}
}

func toTransactionResponses(txns []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txns))
	for i, t := range txns {
		out[i] = toTransactionResponse(t)
	}
	return out
}

type budgetItemRequest struct {
	CategoryID string     `json:"category_id"`
	Planned    core.Money `json:"planned"`
}

type budgetRequest struct {
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Amount     core.Money          `json:"amount"`
	StartDate  core.Date           `json:"start_date"`
	EndDate    core.Date           `json:"end_date"`
	Period     string              `json:"period"`
	Rollover   bool                `json:"rollover"`
	AccountID  string              `json:"account_id"`
	CategoryID string              `json:"category_id"`
	Items      []budgetItemRequest `json:"items"`
}

func (req budgetRequest) toDomain(userID, id string) core.Budget {
	b := core.Budget{
		ID:         id,
		UserID:     userID,
		Name:       sanitizeInput(req.Name),
		Type:       core.TransactionType(req.Type),
		Amount:     req.Amount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Period:     core.BudgetPeriod(req.Period),
		Rollover:   req.Rollover,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
	}
	for _, item := range req.Items {
		b.Items = append(b.Items, core.BudgetItem{
			CategoryID: item.CategoryID,
			Planned:    item.Planned,
		})
	}
	return b
}

type budgetItemResponse struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"category_id,omitempty"`
	Planned    core.Money `json:"planned"`
}

type budgetResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Amount     core.Money           `json:"amount"`
	StartDate  core.Date            `json:"start_date"`
	EndDate    core.Date            `json:"end_date"`
	Period     string               `json:"period"`
	Rollover   bool                 `json:"rollover"`
	AccountID  string               `json:"account_id,omitempty"`
	CategoryID string               `json:"category_id,omitempty"`
	Active     bool                 `json:"active"`
	Items      []budgetItemResponse `json:"items"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	resp := budgetResponse{
		ID:         b.ID,
		Name:       b.Name,
		Type:       string(b.Type),
		Amount:     b.Amount,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Period:     string(b.Period),
		Rollover:   b.Rollover,
		AccountID:  b.AccountID,
		CategoryID: b.CategoryID,
		Active:     b.Active(core.DateOf(time.Now())),
		Items:      []budgetItemResponse{},
	}
	for _, item := range b.Items {
		resp.Items = append(resp.Items, budgetItemResponse{
			ID:         item.ID,
			CategoryID: item.CategoryID,
			Planned:    item.Planned,
		})
	}
	return resp
}
