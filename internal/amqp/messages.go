package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"

	TableAccounts     = "accounts"
	TableCategories   = "categories"
	TableTransactions = "transactions"
	TableBudgets      = "budgets"
)

// ChangeEvent announces that one record changed. It carries only identifiers;
// consumers fetch current state from the database, so a late delivery can
// never apply stale data.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	EntityID  string    `json:"entity_id"`
	UserID    string    `json:"user_id"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(table, action, entityID, userID string, version int64) *ChangeEvent {
	return &ChangeEvent{
		Table:     table,
		Action:    action,
		EntityID:  entityID,
		UserID:    userID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// RoutingKey is "<table>.<action>", so consumers can bind to a whole table
// with "transactions.*" or to everything with "#".
func (e *ChangeEvent) RoutingKey() string {
	return e.Table + "." + e.Action
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
