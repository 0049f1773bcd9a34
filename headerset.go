package smtpsubmit

import (
	"encoding/json"
	"strings"
)

// HeaderSet is the external MIME/RFC-5322 header container the caller
// supplies to SendMail. It is deliberately minimal: the core only ever
// needs to read headers, generate their raw wire form, and copy them into a
// PendingSend.
type HeaderSet interface {
	HasHeader(name string) bool
	GetHeaderValue(name string) (string, bool)
	GetHeaderMultiValue(name string) []string
	GenerateRawHeaders() string
}

// headerField is one name/value pair, order-preserving, mirroring the
// teacher's mail.go Header/Headers shape.
type headerField struct {
	Name  string `json:"name" msg:"name"`
	Value string `json:"value" msg:"value"`
}

// MapHeaderSet is a small reference HeaderSet implementation: an
// insertion-ordered list of header fields with case-insensitive lookup.
type MapHeaderSet struct {
	fields []headerField
}

// NewMapHeaderSet returns an empty MapHeaderSet.
func NewMapHeaderSet() *MapHeaderSet {
	return &MapHeaderSet{}
}

// Add appends a header field, preserving insertion order and allowing
// duplicate names (e.g. multiple To headers).
func (h *MapHeaderSet) Add(name, value string) *MapHeaderSet {
	h.fields = append(h.fields, headerField{Name: name, Value: value})
	return h
}

func (h *MapHeaderSet) HasHeader(name string) bool {
	_, ok := h.GetHeaderValue(name)
	return ok
}

func (h *MapHeaderSet) GetHeaderValue(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

func (h *MapHeaderSet) GetHeaderMultiValue(name string) []string {
	var values []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

func (h *MapHeaderSet) GenerateRawHeaders() string {
	var b strings.Builder
	for _, f := range h.fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\r\n")
	}
	return b.String()
}

// headerSetSnapshot is the msgp/JSON wire form of a MapHeaderSet, produced
// by ToJSON and ToMessagePack. Named distinctly from MapHeaderSet so a
// //go:generate msgp pass can target it without pulling the exported type's
// unrelated methods into the generated code.
type headerSetSnapshot struct {
	Fields []headerField `json:"fields" msg:"fields"`
}

// Snapshot returns the msgp/JSON-marshalable snapshot of h's fields.
func (h *MapHeaderSet) Snapshot() headerSetSnapshot {
	return headerSetSnapshot{Fields: append([]headerField(nil), h.fields...)}
}

// ToJSON marshals the header set for diagnostics export.
func (h *MapHeaderSet) ToJSON() ([]byte, error) {
	return json.Marshal(h.Snapshot())
}
