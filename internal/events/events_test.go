package events

import (
	"encoding/json"
	"testing"
)

func TestValid(t *testing.T) {
	for _, e := range Domain() {
		if !e.Valid() {
			t.Errorf("domain event %q must be valid", e)
		}
	}
	if !ConnectionStatus.Valid() {
		t.Error("connection:status must be valid")
	}
	if Event("contact:archived").Valid() {
		t.Error("unknown event must not be valid")
	}
	if Event("").Valid() {
		t.Error("empty event must not be valid")
	}
}

func TestDomain_ExcludesStatus(t *testing.T) {
	for _, e := range Domain() {
		if e == ConnectionStatus {
			t.Error("connection:status is produced locally, not server-pushed")
		}
	}
}

func TestDomain_CopyIsIndependent(t *testing.T) {
	a := Domain()
	a[0] = Event("mutated")
	if Domain()[0] == Event("mutated") {
		t.Error("Domain must return a copy")
	}
}

func TestStatusPayload_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(StatusPayload{Status: "connected"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"status":"connected"}` {
		t.Errorf("expected bare status, got %s", data)
	}

	data, _ = json.Marshal(StatusPayload{Status: "reconnecting", Attempt: 3, MaxAttempts: 10})
	want := `{"status":"reconnecting","attempt":3,"maxAttempts":10}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
