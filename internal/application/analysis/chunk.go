package analysis

import (
	"time"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/antecedent"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ChunkStatus is the lifecycle state of one chunk.
type ChunkStatus string

const (
	StatusPending   ChunkStatus = "pending"
	StatusRunning   ChunkStatus = "running"
	StatusSucceeded ChunkStatus = "succeeded"
	StatusFailed    ChunkStatus = "failed"
	StatusAbandoned ChunkStatus = "abandoned"
)

// Terminal reports whether no further transition can follow s.
func (s ChunkStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusAbandoned
}

// DocumentError records a target that was skipped inside an otherwise
// healthy chunk.
type DocumentError struct {
	DocumentID string
	Err        error
}

// ChunkResult is the outcome of one chunk. Rows is empty unless the chunk
// succeeded.
type ChunkResult struct {
	Index          int
	Documents      []string
	Rows           []antecedent.Result
	DocumentErrors []DocumentError
	Err            error
	Status         ChunkStatus
	Duration       time.Duration
}

// State summarizes the result for status reporting.
func (r ChunkResult) State() ChunkState {
	st := ChunkState{
		Index:          r.Index,
		Status:         r.Status,
		Documents:      len(r.Documents),
		Rows:           len(r.Rows),
		DocumentErrors: len(r.DocumentErrors),
		DurationMS:     r.Duration.Milliseconds(),
		UpdatedAt:      time.Now().UTC(),
	}
	if r.Err != nil {
		st.Code = string(errors.GetCode(r.Err))
		st.Message = r.Err.Error()
	}
	return st
}

// ChunkState is the serialized form of a chunk status published to trackers
// and written to the run manifest.
type ChunkState struct {
	Index          int         `json:"index"`
	Status         ChunkStatus `json:"status"`
	Documents      int         `json:"documents"`
	Rows           int         `json:"rows"`
	DocumentErrors int         `json:"document_errors"`
	Code           string      `json:"code,omitempty"`
	Message        string      `json:"message,omitempty"`
	DurationMS     int64       `json:"duration_ms"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// BatchOutcome holds every chunk result ordered by chunk index.
type BatchOutcome struct {
	Chunks []ChunkResult
}

// Rows concatenates the rows of succeeded chunks in chunk order.
func (o *BatchOutcome) Rows() []antecedent.Result {
	var n int
	for _, c := range o.Chunks {
		n += len(c.Rows)
	}
	rows := make([]antecedent.Result, 0, n)
	for _, c := range o.Chunks {
		rows = append(rows, c.Rows...)
	}
	return rows
}

// Count returns the number of chunks in status s.
func (o *BatchOutcome) Count(s ChunkStatus) int {
	var n int
	for _, c := range o.Chunks {
		if c.Status == s {
			n++
		}
	}
	return n
}

// DocumentErrors returns all per-document errors in chunk order.
func (o *BatchOutcome) DocumentErrors() []DocumentError {
	var out []DocumentError
	for _, c := range o.Chunks {
		out = append(out, c.DocumentErrors...)
	}
	return out
}

// States returns the status summary of every chunk.
func (o *BatchOutcome) States() []ChunkState {
	out := make([]ChunkState, len(o.Chunks))
	for i, c := range o.Chunks {
		out[i] = c.State()
	}
	return out
}

// AllFailed reports whether there was work and no non-empty chunk
// succeeded.
func (o *BatchOutcome) AllFailed() bool {
	nonEmpty, ok := 0, 0
	for _, c := range o.Chunks {
		if len(c.Documents) == 0 {
			continue
		}
		nonEmpty++
		if c.Status == StatusSucceeded {
			ok++
		}
	}
	return nonEmpty > 0 && ok == 0
}

// Outcome classifies the run as "succeeded", "failed" or "partial".
func (o *BatchOutcome) Outcome() string {
	switch {
	case o.AllFailed():
		return "failed"
	case o.Count(StatusSucceeded) == len(o.Chunks):
		return "succeeded"
	default:
		return "partial"
	}
}

//Personal.AI order the ending
