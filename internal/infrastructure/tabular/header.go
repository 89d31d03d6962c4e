// Package tabular reads the corpus from CSV tables and writes analysis rows
// back to CSV.
package tabular

import (
	"strings"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Canonical column names of the input tables.
const (
	ColDocumentID = "document_id"
	ColYear       = "year"
	ColCitation   = "citation"
	ColCategory   = "category"
	ColAuthor     = "author"
	ColTopics     = "topics"
	ColText       = "text"
	ColPhrase     = "phrase"
	ColLength     = "length"
)

// columnAliases maps legacy column names onto canonical ones.
var columnAliases = map[string]string{
	"filename":     ColDocumentID,
	"lexis_cite":   ColCitation,
	"opinion_type": ColCategory,
}

// header resolves column positions by canonical name.
type header map[string]int

func parseHeader(record []string, required ...string) (header, error) {
	h := make(header, len(record))
	for i, name := range record {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canon, ok := columnAliases[name]; ok {
			name = canon
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, errors.MalformedInput("missing required column").WithDetail("column=" + col)
		}
	}
	return h, nil
}

// get returns the trimmed value of col, or "" when the column is absent.
func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// raw is get without trimming, for free text.
func (h header) raw(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

//Personal.AI order the ending
