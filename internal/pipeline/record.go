package pipeline

import "github.com/mohammad-safakhou/gatherer/internal/extract"

// Status labels the terminal outcome of one source in a run. Every
// configured source produces exactly one record with one of these.
type Status string

const (
	// StatusExtracted means automatic extraction completed; Items holds
	// the parsed records (possibly none: "no articles found" is success).
	StatusExtracted Status = "extracted"
	// StatusManual means automation failed and the operator substituted
	// content; RawText holds it.
	StatusManual Status = "manual"
	// StatusNoContent means automation failed and the operator skipped.
	StatusNoContent Status = "no_content"
	// StatusModelUnavailable means the model collaborator was unreachable.
	StatusModelUnavailable Status = "model_unavailable"
	// StatusParseFailed means the model responded but its output could not
	// be interpreted; RawText preserves the response for inspection.
	StatusParseFailed Status = "parse_failed"
	// StatusMetadataError means the metadata-API collaborator failed and
	// the source was skipped for this run.
	StatusMetadataError Status = "metadata_error"
)

// Item is one extracted article plus its normalized publication instant,
// when the raw date expression could be parsed.
type Item struct {
	extract.Article
	NormalizedDate string `json:"normalized_date,omitempty"`
	Region         string `json:"region,omitempty"`
}

// Record is the per-source output artefact, serialized as one JSON line.
type Record struct {
	RunID      string   `json:"run_id"`
	SourceName string   `json:"source_name"`
	SourceURL  string   `json:"source_url"`
	Kind       string   `json:"kind"`
	Category   string   `json:"category,omitempty"`
	Status     Status   `json:"status"`
	Items      []Item   `json:"items,omitempty"`
	RawText    string   `json:"raw_text,omitempty"`
	Flags      []string `json:"flags,omitempty"`
	Error      string   `json:"error,omitempty"`
}
