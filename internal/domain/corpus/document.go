package corpus

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Category is the opinion type of a document.
type Category string

const (
	CategoryMajority Category = "majority"
	CategoryOther    Category = "other"
)

func (c Category) String() string {
	return string(c)
}

// ParseCategory normalises a raw opinion type. Values outside the known set
// are kept verbatim (lower-cased) so cross-category filters still work.
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Document is one opinion of the corpus. It is created at load time and never
// mutated afterwards.
type Document struct {
	ID       string
	Year     int
	Citation string
	Category Category
	Author   string
	Topics   map[string]bool

	// Text is the raw opinion text. It is only needed for redaction and may be
	// empty when the document table was loaded without a text column.
	Text string
}

// HasTopic reports whether the named topic flag is set on the document.
func (d *Document) HasTopic(topic string) bool {
	if d == nil || d.Topics == nil {
		return false
	}
	return d.Topics[topic]
}

// TopicNames returns the set topic flags in sorted order.
func (d *Document) TopicNames() []string {
	names := make([]string, 0, len(d.Topics))
	for k, v := range d.Topics {
		if v {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks the required fields of a document record.
func (d *Document) Validate() error {
	if d == nil {
		return errors.MalformedInput("nil document")
	}
	if strings.TrimSpace(d.ID) == "" {
		return errors.MalformedInput("document id is empty")
	}
	if d.Year <= 0 {
		return errors.MalformedInput("document year must be positive").WithDetailf("document_id=%s year=%d", d.ID, d.Year)
	}
	if strings.TrimSpace(d.Author) == "" {
		return errors.MalformedInput("document author is empty").WithDetail("document_id=" + d.ID)
	}
	return nil
}

// ParseTopics splits a ";"-separated flag list into a topic set.
func ParseTopics(s string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = true
		}
	}
	return out
}

// FormatTopics is the inverse of ParseTopics.
func FormatTopics(topics map[string]bool) string {
	d := Document{Topics: topics}
	return strings.Join(d.TopicNames(), ";")
}

// NormalizeText puts opinion and phrase text into Unicode NFC so that a phrase
// matches the text it was extracted from whatever form each source stored.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

//Personal.AI order the ending
