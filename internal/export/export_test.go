package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"alphawealth/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			Date:         core.NewDate(2024, 3, 5),
			Type:         core.TypeExpense,
			Amount:       core.Money{Cents: 1250},
			Description:  "Lunch, with a comma",
			AccountName:  "Main",
			CategoryName: "Food & Dining",
		},
		{
			Date:        core.NewDate(2024, 3, 1),
			Type:        core.TypeIncome,
			Amount:      core.Money{Cents: 500000},
			Description: "Salary",
			AccountName: "Main",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTransactions()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "date,description,amount,type,category,account" {
		t.Fatalf("unexpected header %v", records[0])
	}
	lunch := records[1]
	if lunch[0] != "2024-03-05" || lunch[3] != "expense" || lunch[2] != "-12.50" {
		t.Fatalf("unexpected expense row %v", lunch)
	}
	if lunch[1] != "Lunch, with a comma" {
		t.Fatalf("comma in description must survive quoting: %q", lunch[1])
	}
	if records[2][2] != "5000.00" {
		t.Fatalf("income should stay positive, got %q", records[2][2])
	}
	if records[2][4] != "" {
		t.Fatalf("missing category should be empty, got %q", records[2][4])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "date,description,amount,type,category,account" {
		t.Fatalf("empty export should still carry the header, got %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleTransactions()); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("read back json: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["date"] != "2024-03-05" || records[0]["type"] != "expense" {
		t.Fatalf("unexpected record %v", records[0])
	}
	if records[0]["amount"].(float64) != -12.5 {
		t.Fatalf("expense amount should be negative, got %v", records[0]["amount"])
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("empty export should be an empty array, got %q", got)
	}
}
