package models

import (
	"encoding/json"
	"testing"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{``, ""},
		{`null`, ""},
		{`"plain"`, "plain"},
		{`""`, ""},
		{`42`, "42"},
		{`true`, "true"},
		{` { "k" : [1, 2] } `, `{"k":[1,2]}`},
	}
	for _, tt := range tests {
		if got := ValueText(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("ValueText(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRecordUnmarshalKeepsOtherFields(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"id":1700000000000,"name":"port","value":8080}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID != IntID(1700000000000) || r.Name != "port" || r.Value != "8080" {
		t.Errorf("record = %+v", r)
	}
}
