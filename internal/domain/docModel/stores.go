package docModel

import (
	"context"
	"errors"
	"fmt"
)

// DocumentStore persists passages keyed by their opaque id, point lookups only.
type DocumentStore interface {
	PutDocument(ctx context.Context, doc Document) error
	//GetDocument returns ErrDocumentNotFound for a missing id
	GetDocument(ctx context.Context, id string) (Document, error)
}

// GateStore holds the one persisted ingestion flag. TrySet is compare-and-set:
// it reports whether this caller performed the absent->true transition. There
// is no way back, un-ingesting is not a thing.
type GateStore interface {
	IsSet(ctx context.Context, key string) (bool, error)
	TrySet(ctx context.Context, key string) (bool, error)
}

var ErrDocumentNotFound = errors.New("document not found")

// StoreWriteError fails the whole ingestion run; the gate must stay unset so a
// retry redoes the corpus.
type StoreWriteError struct {
	Id  string
	Err error
}

func (e *StoreWriteError) Error() string { return fmt.Sprintf("store write for %s: %v", e.Id, e.Err) }
func (e *StoreWriteError) Unwrap() error { return e.Err }
