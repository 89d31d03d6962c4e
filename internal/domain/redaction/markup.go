package redaction

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

const (
	openMarker  = "<span>"
	closeMarker = "</span>"
)

// Result is the outcome of one redaction pass.
type Result struct {
	// Body is the HTML-escaped text with highlight markers inserted.
	Body  string
	Spans []Span
}

// Redact marks every occurrence of phrases in text. Text outside the markers
// is HTML-escaped. The output depends only on its inputs, so repeated runs are
// byte-identical.
func Redact(text string, phrases PhraseSet) Result {
	return NewScanner(text).Redact(phrases)
}

// Redact is Redact over the scanner's text.
func (s *Scanner) Redact(phrases PhraseSet) Result {
	spans := s.Spans(phrases)
	return Result{Body: apply(s.text, spans), Spans: spans}
}

// apply inserts markers for spans (sorted by start, non-overlapping), walking
// from the highest offset to the lowest.
func apply(text string, spans []Span) string {
	pieces := make([]string, 0, 2*len(spans)+1)
	tail := len(text)
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		pieces = append(pieces,
			html.EscapeString(text[s.End:tail]),
			openMarker+html.EscapeString(text[s.Start:s.End])+closeMarker,
		)
		tail = s.Start
	}
	pieces = append(pieces, html.EscapeString(text[:tail]))

	var sb strings.Builder
	for i := len(pieces) - 1; i >= 0; i-- {
		sb.WriteString(pieces[i])
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Page rendering
// ─────────────────────────────────────────────────────────────────────────────

var pageTemplate = template.Must(template.New("redaction").Parse(`<html lang="en">
    <head>
        <meta charset="utf-8">
        <title>{{.Title}}</title>
        <style>
            p {
                text-indent: 5em;
                font-family: "New Century Schoolbook LT Pro", Times, serif;
            }
            span {
                background-color: #000000;
            }
        </style>
    </head>
    <body>
        {{.Body}}
    </body>
</html>
`))

// Paragraphs turns blank-line separated text into <p> blocks.
func Paragraphs(body string) string {
	return "<p>" + strings.ReplaceAll(body, "\n\n", "</p><p>") + "</p>"
}

// RenderHTML wraps a redacted body in the standalone page.
func RenderHTML(title, body string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(Paragraphs(body))})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Artifact naming
// ─────────────────────────────────────────────────────────────────────────────

// Mode selects which antecedent phrases are highlighted.
type Mode string

const (
	// ModeAll highlights every antecedent phrase.
	ModeAll Mode = "all"
	// ModeModern highlights antecedent phrases outside the baseline.
	ModeModern Mode = "modern"
)

// CombinedLabel is the length label of an artifact covering every length.
const CombinedLabel = "all"

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// ArtifactName returns the deterministic file name for a document's redaction
// at one length label and mode, e.g. "1995_U.S._LEXIS_4123_2_modern.html".
func ArtifactName(citation, lengthLabel string, mode Mode, debug bool) string {
	var sb strings.Builder
	if debug {
		sb.WriteString("DEBUG_")
	}
	sb.WriteString(nameReplacer.Replace(citation))
	sb.WriteString("_")
	sb.WriteString(lengthLabel)
	if mode == ModeModern {
		sb.WriteString("_modern")
	}
	sb.WriteString(".html")
	return sb.String()
}

// LengthLabel is the artifact label for one length category.
func LengthLabel(l corpus.Length) string { return l.String() }

//Personal.AI order the ending
