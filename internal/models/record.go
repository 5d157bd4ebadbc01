// Package models defines the domain types for recvault.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID identifies a record. File-backed vaults use integer ids (Unix
// milliseconds at creation); the document store uses generated object ids.
// Integer ids travel as bare JSON numbers, everything else as strings.
type ID string

// IntID returns the canonical ID for n.
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// ParseID normalises user input (path segments, menu input) into an ID.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntID(n)
	}
	return ID(s)
}

// Int64 reports the numeric value of an integer id.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id ID) String() string { return string(id) }

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("models: id must be a number or string: %w", err)
	}
	if v, err := n.Int64(); err == nil {
		*id = IntID(v)
		return nil
	}
	*id = ID(n.String())
	return nil
}

// CompareIDs orders integer ids numerically and before non-integer ids,
// which compare lexicographically.
func CompareIDs(a, b ID) int {
	an, aok := a.Int64()
	bn, bok := b.Int64()
	switch {
	case aok && bok:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// Record is a stored name/value pair.
type Record struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// UnmarshalJSON accepts any JSON type for value; see ValueText.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Value json.RawMessage `json:"value"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Value = ValueText(aux.Value)
	return nil
}

// ValueText converts a raw JSON value into the stored value text. Strings
// are kept as-is, null or absent is empty, and anything else is kept as its
// compact JSON text.
func ValueText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Created returns the creation time. Records written before createdAt
// existed fall back to their id read as Unix milliseconds.
func (r Record) Created() time.Time {
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt
	}
	if n, ok := r.ID.Int64(); ok {
		return time.UnixMilli(n)
	}
	return time.Time{}
}

// Input is the caller-supplied part of a record for add and update.
type Input struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileMetadata is a lightweight representation returned by storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
