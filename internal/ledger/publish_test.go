package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/drylab/drylab/internal/types"
)

type rejectingValidator struct{ err error }

func (r rejectingValidator) Validate(schemaID string, blob []byte) error { return r.err }

func TestPublish_AssignsDenseGapFreeSeq(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		outcome, header, err := l.Publish(ctx, "run-1", "THING@1", types.Blob([]byte{byte(i)}))
		if err != nil {
			t.Fatalf("Publish() #%d failed: %v", i, err)
		}
		if outcome != OutcomeCommitted {
			t.Fatalf("Publish() #%d outcome = %v, want Committed", i, outcome)
		}
		if header.Ts == 0 {
			t.Errorf("Publish() #%d did not assign ts", i)
		}
	}

	rows, err := l.Cat(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("Cat() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Cat() returned %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		wantSeq := int64(i + 1)
		if row.Seq != wantSeq {
			t.Errorf("row %d: seq = %d, want %d", i, row.Seq, wantSeq)
		}
	}
}

func TestPublish_DuplicateIsIdempotent(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	blob := types.Blob("same content")

	outcome1, header1, err := l.Publish(ctx, "run-1", "THING@1", blob)
	if err != nil {
		t.Fatalf("first Publish() failed: %v", err)
	}
	if outcome1 != OutcomeCommitted {
		t.Fatalf("first Publish() outcome = %v, want Committed", outcome1)
	}

	outcome2, header2, err := l.Publish(ctx, "run-1", "THING@1", blob)
	if err != nil {
		t.Fatalf("second Publish() failed: %v", err)
	}
	if outcome2 != OutcomeDuplicate {
		t.Fatalf("second Publish() outcome = %v, want Duplicate", outcome2)
	}
	if header1.ID != header2.ID || header1.Ts != header2.Ts {
		t.Errorf("duplicate publish returned a different header: %+v vs %+v", header1, header2)
	}

	rows, err := l.Cat(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("Cat() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Cat() returned %d rows, want 1 (duplicate must not append)", len(rows))
	}
}

func TestPublish_SameContentDifferentSchemaIsNotDuplicate(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	blob := types.Blob("shared bytes")

	if _, _, err := l.Publish(ctx, "run-1", "A@1", blob); err != nil {
		t.Fatalf("Publish(A) failed: %v", err)
	}
	outcome, _, err := l.Publish(ctx, "run-1", "B@1", blob)
	if err != nil {
		t.Fatalf("Publish(B) failed: %v", err)
	}
	if outcome != OutcomeCommitted {
		t.Errorf("Publish(B) outcome = %v, want Committed (different schema)", outcome)
	}
}

func TestPublish_SeqIsScopedPerRun(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	if _, _, err := l.Publish(ctx, "run-a", "THING@1", types.Blob("a1")); err != nil {
		t.Fatalf("Publish(run-a) failed: %v", err)
	}
	_, header, err := l.Publish(ctx, "run-b", "THING@1", types.Blob("b1"))
	if err != nil {
		t.Fatalf("Publish(run-b) failed: %v", err)
	}

	rowsB, err := l.Cat(ctx, "run-b", 0)
	if err != nil {
		t.Fatalf("Cat(run-b) failed: %v", err)
	}
	if len(rowsB) != 1 || rowsB[0].Seq != 1 {
		t.Fatalf("run-b seq = %v, want a single row at seq 1", rowsB)
	}
	if rowsB[0].Header.ID != header.ID {
		t.Errorf("run-b row ID mismatch")
	}
}

func TestPublish_RejectedByValidator(t *testing.T) {
	path := t.TempDir() + "/test.db"
	wantErr := errors.New("bad shape")
	l, err := Open(path, rejectingValidator{err: wantErr})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer l.Close()

	_, _, err = l.Publish(context.Background(), "run-1", "THING@1", types.Blob("x"))
	if err == nil {
		t.Fatal("Publish() with rejecting validator succeeded, want error")
	}
	if !IsRejected(err) {
		t.Errorf("Publish() error = %v, want a Rejected ledger error", err)
	}

	rows, err := l.Cat(context.Background(), "run-1", 0)
	if err != nil {
		t.Fatalf("Cat() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Cat() returned %d rows, want 0 after rejection", len(rows))
	}
}
