package corpus

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Opinion file naming
// ─────────────────────────────────────────────────────────────────────────────

// opinionFilePattern matches names such as "1995-4123-majority_SCALIA.txt":
// year, LEXIS number, opinion type and author.
var opinionFilePattern = regexp.MustCompile(`(\d{4})-(\d+)-(\w+)_([A-Z]+)`)

// OpinionFileInfo is the metadata encoded in an opinion file name.
type OpinionFileInfo struct {
	Year     int
	Citation string
	Category Category
	Author   string
}

// ParseOpinionFilename extracts the metadata from an opinion file name. Names
// that do not follow the convention yield MalformedInput.
func ParseOpinionFilename(name string) (OpinionFileInfo, error) {
	m := opinionFilePattern.FindStringSubmatch(name)
	if m == nil {
		return OpinionFileInfo{}, errors.MalformedInput("file name does not follow the opinion naming convention").WithDetail("name=" + name)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return OpinionFileInfo{}, errors.Wrap(err, errors.ErrCodeMalformedInput, "invalid year in file name")
	}
	return OpinionFileInfo{
		Year:     year,
		Citation: fmt.Sprintf("%s U.S. LEXIS %s", m[1], m[2]),
		Category: ParseCategory(m[3]),
		Author:   m[4],
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Text cleanup
// ─────────────────────────────────────────────────────────────────────────────

var (
	repeatedSpaces   = regexp.MustCompile(` +`)
	footnoteBanner   = regexp.MustCompile(`(?:- ){3,}(-)?[\w ]+?(?:- ){3,}(-)?`)
	footnoteNumber   = regexp.MustCompile(`(?m)^\d([A-Z])`)
	bracketedMarkers = regexp.MustCompile(`\[.*?\]`)
	newlines         = regexp.MustCompile(`\n+`)
)

// CleanOpinionText strips reporter markup from a raw opinion: footnote
// banners, footnote numbers running into the text, bracketed head-note
// markers, and line breaks. Runs of spaces are collapsed and the result is
// NFC-normalized.
func CleanOpinionText(text string) string {
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = footnoteBanner.ReplaceAllString(text, "")
	text = footnoteNumber.ReplaceAllString(text, "$1")
	text = bracketedMarkers.ReplaceAllString(text, "")
	text = newlines.ReplaceAllString(text, " ")
	return NormalizeText(repeatedSpaces.ReplaceAllString(text, " "))
}

//Personal.AI order the ending
