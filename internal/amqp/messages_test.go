package amqp

import "testing"

func TestChangeEventRoutingKey(t *testing.T) {
	ev := NewChangeEvent(TableTransactions, ActionUpdated, "tx-1", "u1", 3)
	if got := ev.RoutingKey(); got != "transactions.updated" {
		t.Fatalf("routing key = %q", got)
	}
}

func TestChangeEventJSONRoundTrip(t *testing.T) {
	ev := NewChangeEvent(TableBudgets, ActionDeleted, "b-1", "u1", 0)
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ChangeEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Table != ev.Table || back.Action != ev.Action || back.EntityID != ev.EntityID || back.UserID != ev.UserID {
		t.Fatalf("round trip mismatch: %+v != %+v", back, ev)
	}
}

func TestChangeEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ChangeEventFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}
