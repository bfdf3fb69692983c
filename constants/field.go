package constants

import (
	"strings"
)

// Field names a column of the extracted contract record.
type Field string

const (
	ContractNumber Field = "Contract Number"
	Supplier       Field = "Supplier"
	Client         Field = "Client"
	Object         Field = "Object"
	TotalAmount    Field = "Total Amount"
	Currency       Field = "Currency"
	Date           Field = "Date"
	Location       Field = "Location"
)

// allFields is the export column order. Do not reorder: CSV/XLSX headers depend on it.
var allFields = []Field{
	ContractNumber,
	Supplier,
	Client,
	Object,
	TotalAmount,
	Currency,
	Date,
	Location,
}

// Fields returns the record fields in export order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// Index returns the position of f in export order, or -1.
func (f Field) Index() int {
	for i, v := range allFields {
		if v == f {
			return i
		}
	}
	return -1
}

// Canonicalize maps user input ("total_amount", "contract number", "lieu") to a Field.
func Canonicalize(input string) (Field, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)

	synonyms := map[string]Field{
		"number":      ContractNumber,
		"contract no": ContractNumber,
		"numero":      ContractNumber,
		"prestataire": Supplier,
		"fournisseur": Supplier,
		"objet":       Object,
		"amount":      TotalAmount,
		"montant":     TotalAmount,
		"devise":      Currency,
		"year":        Date,
		"lieu":        Location,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == strings.ToLower(string(f)) {
			return f, true
		}
	}
	return "", false
}
