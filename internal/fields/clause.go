package fields

import "regexp"

// The domicile clause introduces each party with a marker line. English and French
// boilerplate are both recognised; matching is case-insensitive.
var (
	clientBlock   = regexp.MustCompile(`(?is)(?:For the CLIENT|Pour le CLIENT)\s*:\s*(.+?)(?:For the SUPPLIER|Pour le PRESTATAIRE)`)
	supplierBlock = regexp.MustCompile(`(?is)(?:For the SUPPLIER|Pour le PRESTATAIRE)\s*:\s*(.+?)(?:ARTICLE|\z)`)
)

// ExtractParties returns the raw client and supplier blocks of the domicile clause.
// The client block ends at the supplier marker; the supplier block ends at the next
// ARTICLE heading or the end of text. Blocks may span lines; callers reduce them with
// FirstLine. A document without the clause yields two misses.
func ExtractParties(text string) (client, supplier string, clientOK, supplierOK bool) {
	client, clientOK = ExtractField(text, clientBlock, 1)
	supplier, supplierOK = ExtractField(text, supplierBlock, 1)
	return client, supplier, clientOK, supplierOK
}
