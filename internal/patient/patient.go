// Package patient extracts TCGA-style patient identifiers from the column
// headers of a genomic reference file.
package patient

import (
	"regexp"
	"strings"
)

// IDColumn is the output header naming the identifier column. It is also the
// feature-list sentinel that is never looked up in clinical tables.
const IDColumn = "Patient ID"

// HeaderSeparator splits the reference file's header line into tokens.
const HeaderSeparator = "\t"

// idPattern matches <word-chars>-<digits>-<digits>, e.g. TCGA-02-0001.
var idPattern = regexp.MustCompile(`\w+-\d+-\d+`)

// Match returns the leftmost patient ID embedded in token.
func Match(token string) (string, bool) {
	loc := idPattern.FindStringIndex(token)
	if loc == nil {
		return "", false
	}
	return token[loc[0]:loc[1]], true
}

// ExtractIDs splits a tab-separated header line and returns the patient ID
// found in each token, in column order. Tokens without an ID are skipped.
// Duplicates are kept.
func ExtractIDs(headerLine string) []string {
	tokens := strings.Split(headerLine, HeaderSeparator)
	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := Match(tok); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ShortID returns the part of id after its last hyphen, e.g. TCGA-02-0001
// becomes 0001. An id without a hyphen is returned unchanged.
func ShortID(id string) string {
	return id[strings.LastIndex(id, "-")+1:]
}
