/*
adapter.go - Persistence interface for the snapshot document

PURPOSE:
  The Adapter is a single durable slot holding the whole Store as one JSON
  document. It is written and read atomically, never partially, which is
  what lets the Keeper treat every mutation as a full-snapshot replace.

WRITE DISCIPLINE:
  Last-write-wins. There is no compare-and-swap: the application is
  single-user and single-process, so the slot sees one writer at a time.
  A multi-tab or multi-process deployment would need a versioned-write
  Adapter; none is provided.

IMPLEMENTATIONS:
  - slot/sqlite:       Durable one-row document table (production)
  - record/slot:       In-memory slot (testing/dev)
*/
package record

import "context"

// Adapter stores the serialized snapshot in one durable slot.
type Adapter interface {
	// Read returns the stored document. found is false when the slot has
	// never been written (first run) or was cleared.
	Read(ctx context.Context) (doc []byte, found bool, err error)

	// Write replaces the slot contents with doc.
	Write(ctx context.Context, doc []byte) error

	// Clear empties the slot. A subsequent Read reports found == false.
	Clear(ctx context.Context) error
}
