package llm

import (
	"context"
	"fmt"
	"iter"

	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

// Provider drives one streaming completion call over an assembled prompt.
// The returned sequence yields answer fragments as the model produces them;
// it is finite, not restartable, and stops early when the caller's ctx dies
// or the caller breaks out of the loop. An error element terminates the
// sequence - fragments already yielded stand, nothing is retried.
type Provider interface {
	Stream(ctx context.Context, turns []docModel.Message) iter.Seq2[string, error]
}

// GenerationError is fatal for the request when no output was produced yet.
// After the first fragment it only means the stream ended short.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }
