package corpus

import (
	"strconv"
	"strings"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Length is the token count of a phrase, or Sentence for whole-sentence
// matches. Sentence compares greater than every token count, so the natural
// integer order is also the canonical processing order.
type Length int

// Sentence is the sentinel length for whole-sentence phrases.
const Sentence Length = 1 << 30

const sentenceLabel = "sentence"

// ParseLength parses the length column of the phrase table.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, sentenceLabel) {
		return Sentence, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || Length(n) >= Sentence {
		return 0, errors.MalformedInput("invalid phrase length").WithDetail("length=" + s)
	}
	return Length(n), nil
}

// MustParseLength is ParseLength for literals; it panics on error.
func MustParseLength(s string) Length {
	l, err := ParseLength(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Valid reports whether l is a positive token count or Sentence.
func (l Length) Valid() bool {
	return l > 0
}

// IsSentence reports whether l is the sentence sentinel.
func (l Length) IsSentence() bool {
	return l == Sentence
}

func (l Length) String() string {
	if l == Sentence {
		return sentenceLabel
	}
	return strconv.Itoa(int(l))
}

// MarshalText renders the length the way it appears in tabular output.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts the same forms as ParseLength.
func (l *Length) UnmarshalText(b []byte) error {
	v, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

//Personal.AI order the ending
