package region

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/gatherer/provider"
)

type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Complete(context.Context, string, string) (string, error) {
	return f.response, f.err
}

func TestCategorize_ValidAnswer(t *testing.T) {
	c := NewCategorizer(&fakeProvider{response: "  Southeast Asia \n"}, nil)
	got, err := c.Categorize(context.Background(), "Vietnam boosts rice exports", "Reuters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Southeast Asia" {
		t.Fatalf("expected Southeast Asia, got %q", got)
	}
}

func TestCategorize_InvalidAnswerDefaultsToUnknown(t *testing.T) {
	c := NewCategorizer(&fakeProvider{response: "Somewhere over the rainbow"}, nil)
	got, err := c.Categorize(context.Background(), "title", "source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Unknown {
		t.Fatalf("expected %q, got %q", Unknown, got)
	}
}

func TestCategorize_ProviderFailurePropagates(t *testing.T) {
	c := NewCategorizer(&fakeProvider{err: provider.ErrUnavailable}, nil)
	if _, err := c.Categorize(context.Background(), "t", "s"); !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
