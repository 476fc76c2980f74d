package extract

import (
	"encoding/json"
	"fmt"

	"github.com/mohammad-safakhou/gatherer/internal/helpers"
)

// Article is one extracted record. URL is contractually drawn from the
// link set the model was given; RawDate is kept verbatim for the date
// normalizer downstream.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	RawDate string `json:"raw_date"`

	// Ungrounded marks a record whose URL is absent from the link set it
	// was extracted against. Such records are kept and surfaced, never
	// silently repaired or dropped.
	Ungrounded bool `json:"ungrounded,omitempty"`
}

// ParseError reports a model response that could not be interpreted as an
// article sequence. It is recoverable and must never be conflated with
// provider.ErrUnavailable.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseArticles interprets the model's raw response as a JSON sequence of
// articles and checks every URL for membership in sortedLinks. Records
// with a foreign URL are flagged ungrounded and reported in the returned
// flag list. An empty sequence is a valid, successful result.
func ParseArticles(raw string, sortedLinks []string) ([]Article, []string, error) {
	payload, err := helpers.ExtractJSON(raw)
	if err != nil {
		return nil, nil, &ParseError{Raw: raw, Err: err}
	}

	var articles []Article
	if err := json.Unmarshal([]byte(payload), &articles); err != nil {
		return nil, nil, &ParseError{Raw: raw, Err: err}
	}

	known := make(map[string]struct{}, len(sortedLinks))
	for _, link := range sortedLinks {
		known[link] = struct{}{}
	}

	var flags []string
	for i := range articles {
		if _, ok := known[articles[i].URL]; !ok {
			articles[i].Ungrounded = true
			flags = append(flags, fmt.Sprintf("ungrounded url %q (title %q)", articles[i].URL, articles[i].Title))
		}
	}
	return articles, flags, nil
}
