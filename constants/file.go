package constants

import (
	"bytes"
	"strings"
)

const PDF = "PDF"

// AllowedExtensions holds the file extensions picked up by batch and watch ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// MaxUploadMB caps documents accepted by the extraction service.
const MaxUploadMB = 50

var pdfMagic = []byte("%PDF-")

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF for pdf extensions and "" otherwise.
func MapExtToFormat(ext string) string {
	if _, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return PDF
	}
	return ""
}

// LooksLikePDF reports whether b starts with the PDF header, ignoring leading whitespace.
func LooksLikePDF(b []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(b, " \t\r\n"), pdfMagic)
}
