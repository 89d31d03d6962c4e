package corpus

import (
	"strings"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// PhraseRecord is one (document, phrase) occurrence produced by the external
// tokenizer. Doc points at the owning Document once the corpus is assembled.
type PhraseRecord struct {
	DocumentID string
	Text       string
	Length     Length
	Doc        *Document
}

// Validate checks the record's fields and its document reference.
func (r PhraseRecord) Validate() error {
	if strings.TrimSpace(r.DocumentID) == "" {
		return errors.MalformedInput("phrase record has empty document id").WithDetail("phrase=" + r.Text)
	}
	if r.Text == "" {
		return errors.MalformedInput("phrase record has empty text").WithDetail("document_id=" + r.DocumentID)
	}
	if !r.Length.Valid() {
		return errors.MalformedInput("phrase record has invalid length").WithDetailf("document_id=%s phrase=%q", r.DocumentID, r.Text)
	}
	if r.Doc == nil {
		return errors.MalformedInput("phrase record references unknown document").WithDetail("document_id=" + r.DocumentID)
	}
	if r.Doc.ID != r.DocumentID {
		return errors.MalformedInput("phrase record document reference mismatch").
			WithDetailf("document_id=%s ref=%s", r.DocumentID, r.Doc.ID)
	}
	return nil
}

//Personal.AI order the ending
