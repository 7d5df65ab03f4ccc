// Package export renders a user's transactions as downloadable CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"alphawealth/internal/core"
)

var csvHeader = []string{"date", "description", "amount", "type", "category", "account"}

// WriteCSV streams transactions as CSV with a header row. Amounts are signed
// decimals: expenses negative, income positive, transfers as stored.
func WriteCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txns {
		record := []string{
			tx.Date.String(),
			tx.Description,
			signedAmount(tx).String(),
			string(tx.Type),
			tx.CategoryName,
			tx.AccountName,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRecord struct {
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Account     string     `json:"account"`
}

// WriteJSON streams transactions as a JSON array using the same columns and
// sign convention as the CSV form.
func WriteJSON(w io.Writer, txns []core.Transaction) error {
	records := make([]jsonRecord, len(txns))
	for i, tx := range txns {
		records[i] = jsonRecord{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      signedAmount(tx),
			Type:        string(tx.Type),
			Category:    tx.CategoryName,
			Account:     tx.AccountName,
		}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

func signedAmount(tx core.Transaction) core.Money {
	if tx.Type == core.TypeExpense {
		return core.Money{Cents: -tx.Amount.Cents}
	}
	return tx.Amount
}
