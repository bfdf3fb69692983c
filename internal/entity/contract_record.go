package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// Source records which extractor produced a field value.
type Source int

const (
	SourceNone Source = iota
	SourcePattern
	SourceClause
	SourceQA
	SourceHeuristic
)

func (s Source) String() string {
	switch s {
	case SourcePattern:
		return "pattern"
	case SourceClause:
		return "clause"
	case SourceQA:
		return "qa"
	case SourceHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FieldValue is a possibly-absent value with its provenance.
type FieldValue struct {
	Value  *string `json:"value"`
	Source Source  `json:"source"`
}

// Present reports whether the field holds a value.
func (v FieldValue) Present() bool { return v.Value != nil }

// ContractRecord is the result of one extraction: the eight contract fields, each a string
// or absent. Values are fixed at Build time; the zero value has every field absent.
type ContractRecord struct {
	fields [8]FieldValue
}

// Get returns the value of f and whether it is present.
func (r ContractRecord) Get(f constants.Field) (string, bool) {
	i := f.Index()
	if i < 0 || r.fields[i].Value == nil {
		return "", false
	}
	return *r.fields[i].Value, true
}

// Field returns the value of f together with its source.
func (r ContractRecord) Field(f constants.Field) FieldValue {
	i := f.Index()
	if i < 0 {
		return FieldValue{}
	}
	fv := r.fields[i]
	if fv.Value != nil {
		v := *fv.Value
		fv.Value = &v
	}
	return fv
}

// Map returns the record as field name -> value, nil for absent fields.
func (r ContractRecord) Map() map[string]*string {
	out := make(map[string]*string, len(r.fields))
	for i, f := range constants.Fields() {
		if r.fields[i].Value == nil {
			out[string(f)] = nil
			continue
		}
		v := *r.fields[i].Value
		out[string(f)] = &v
	}
	return out
}

// Values returns the eight values in export order, "" for absent fields.
func (r ContractRecord) Values() []string {
	out := make([]string, len(r.fields))
	for i, fv := range r.fields {
		if fv.Value != nil {
			out[i] = *fv.Value
		}
	}
	return out
}

// Sources returns field name -> extractor for present fields.
func (r ContractRecord) Sources() map[string]string {
	out := map[string]string{}
	for i, f := range constants.Fields() {
		if r.fields[i].Value != nil {
			out[string(f)] = r.fields[i].Source.String()
		}
	}
	return out
}

// MarshalJSON writes all eight keys in export order with null for absent values.
func (r ContractRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range constants.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(string(f))
		buf.Write(k)
		buf.WriteByte(':')
		if r.fields[i].Value == nil {
			buf.WriteString("null")
			continue
		}
		v, err := json.Marshal(*r.fields[i].Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the export shape back. Unknown keys are rejected; provenance is not
// part of the shape, so decoded values carry SourceNone.
func (r *ContractRecord) UnmarshalJSON(data []byte) error {
	var m map[string]*string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out ContractRecord
	for k, v := range m {
		f, ok := constants.Canonicalize(k)
		if !ok {
			return fmt.Errorf("unknown contract field %q", k)
		}
		if v != nil {
			s := *v
			out.fields[f.Index()] = FieldValue{Value: &s}
		}
	}
	*r = out
	return nil
}

// RecordBuilder accumulates field values during extraction. Later writes to the same
// field replace earlier ones.
type RecordBuilder struct {
	fields [8]FieldValue
}

func NewRecordBuilder() *RecordBuilder { return &RecordBuilder{} }

// Set stores value for f. Unknown fields are ignored.
func (b *RecordBuilder) Set(f constants.Field, value string, src Source) *RecordBuilder {
	if i := f.Index(); i >= 0 {
		v := value
		b.fields[i] = FieldValue{Value: &v, Source: src}
	}
	return b
}

// Get returns the value currently held for f.
func (b *RecordBuilder) Get(f constants.Field) (string, bool) {
	i := f.Index()
	if i < 0 || b.fields[i].Value == nil {
		return "", false
	}
	return *b.fields[i].Value, true
}

// Update rewrites a present value of f in place, keeping its source.
func (b *RecordBuilder) Update(f constants.Field, fn func(string) string) *RecordBuilder {
	if i := f.Index(); i >= 0 && b.fields[i].Value != nil {
		v := fn(*b.fields[i].Value)
		b.fields[i].Value = &v
	}
	return b
}

// Build snapshots the builder into an immutable record.
func (b *RecordBuilder) Build() ContractRecord {
	var r ContractRecord
	for i, fv := range b.fields {
		if fv.Value != nil {
			v := *fv.Value
			r.fields[i] = FieldValue{Value: &v, Source: fv.Source}
		}
	}
	return r
}

// NewContractRecord builds a record from field name -> value, skipping nil values.
// Field names go through constants.Canonicalize.
func NewContractRecord(values map[string]*string) (ContractRecord, error) {
	b := NewRecordBuilder()
	for k, v := range values {
		f, ok := constants.Canonicalize(k)
		if !ok {
			return ContractRecord{}, fmt.Errorf("unknown contract field %q", k)
		}
		if v != nil {
			b.Set(f, *v, SourceNone)
		}
	}
	return b.Build(), nil
}
