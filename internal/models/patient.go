package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// PatientID identifies a patient. Backends may send it as a JSON string or number;
// it is always kept as a string.
type PatientID string

// UnmarshalJSON accepts both "42" and 42.
func (id *PatientID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("patient id: %w", err)
		}
		*id = PatientID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("patient id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("patient id: %w", err)
	}
	*id = PatientID(n.String())
	return nil
}

func (id PatientID) String() string { return string(id) }

// Patient is a person under care as returned by the patient API.
type Patient struct {
	ID          PatientID `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	DocumentURL string    `json:"documentUrl,omitempty"`
}

// HasDocument reports whether the patient carries a document reference.
func (p Patient) HasDocument() bool {
	return p.DocumentURL != ""
}
