package antecedent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
	"github.com/turtacn/Antecedent-Intelligence/internal/domain/phrase"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// FilterKind names a cross-filter restriction on antecedent documents.
type FilterKind string

const (
	// KindAuthor keeps antecedents from documents by a named author.
	KindAuthor FilterKind = "author"
	// KindCategory keeps antecedents from documents of a named category.
	KindCategory FilterKind = "category"
	// KindSameCategory keeps antecedents from documents of the target's category.
	KindSameCategory FilterKind = "same_category"
	// KindCrossCategory keeps antecedents from documents of any other category.
	KindCrossCategory FilterKind = "cross_category"
	// KindTopicAligned keeps antecedents whose topic flag equals the target's.
	KindTopicAligned FilterKind = "topic_aligned"
	// KindTopicOpposed keeps antecedents whose topic flag differs from the target's.
	KindTopicOpposed FilterKind = "topic_opposed"
	// KindRecent keeps antecedents at most Years older than the target.
	KindRecent FilterKind = "recent"
)

var columnSafe = regexp.MustCompile(`[^a-z0-9_]+`)

// CrossFilter is one entry of the configurable cross-filter list. Each filter
// contributes a <column>_count and <column>_fraction to every result row.
type CrossFilter struct {
	// Name overrides the derived column name.
	Name     string
	Kind     FilterKind
	Author   string
	Category corpus.Category
	Topic    string
	Years    int

	// ModernOnly also excludes baseline phrases.
	ModernOnly bool
}

// Validate checks that the parameters required by Kind are present.
func (f CrossFilter) Validate() error {
	switch f.Kind {
	case KindAuthor:
		if f.Author == "" {
			return errors.Validation("author filter requires an author")
		}
	case KindCategory:
		if f.Category == "" {
			return errors.Validation("category filter requires a category")
		}
	case KindTopicAligned, KindTopicOpposed:
		if f.Topic == "" {
			return errors.Validation("topic filter requires a topic").WithDetail("kind=" + string(f.Kind))
		}
	case KindRecent:
		if f.Years <= 0 {
			return errors.Validation("recent filter requires a positive number of years").WithDetailf("years=%d", f.Years)
		}
	case KindSameCategory, KindCrossCategory:
	default:
		return errors.Validation("unknown cross-filter kind").WithDetail("kind=" + string(f.Kind))
	}
	return nil
}

// Column returns the column stem used in tabular output.
func (f CrossFilter) Column() string {
	if f.Name != "" {
		return sanitizeColumn(f.Name)
	}
	var name string
	switch f.Kind {
	case KindAuthor:
		name = "author_" + f.Author
	case KindCategory:
		name = "category_" + string(f.Category)
	case KindTopicAligned:
		name = f.Topic + "_aligned"
	case KindTopicOpposed:
		name = f.Topic + "_opposed"
	case KindRecent:
		name = fmt.Sprintf("recent_%dy", f.Years)
	default:
		name = string(f.Kind)
	}
	if f.ModernOnly {
		name = "modern_" + name
	}
	return sanitizeColumn(name)
}

func sanitizeColumn(s string) string {
	s = strings.Trim(columnSafe.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if s == "" {
		return "filter"
	}
	return s
}

// documents returns the set of documents this filter admits for target.
func (f CrossFilter) documents(idx *phrase.Index, target *corpus.Document) *roaring.Bitmap {
	switch f.Kind {
	case KindAuthor:
		return idx.DocsByAuthor(f.Author)
	case KindCategory:
		return idx.DocsByCategory(f.Category)
	case KindSameCategory:
		return idx.DocsByCategory(target.Category)
	case KindCrossCategory:
		return roaring.AndNot(idx.AllDocs(), idx.DocsByCategory(target.Category))
	case KindTopicAligned, KindTopicOpposed:
		with := idx.DocsWithTopic(f.Topic)
		aligned := f.Kind == KindTopicAligned
		if target.HasTopic(f.Topic) == aligned {
			return with
		}
		return roaring.AndNot(idx.AllDocs(), with)
	case KindRecent:
		return idx.DocsBetween(target.Year-f.Years, target.Year)
	}
	return roaring.New()
}

//Personal.AI order the ending
