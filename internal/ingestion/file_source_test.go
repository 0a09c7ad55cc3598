package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const replayFixture = `
{"kind":"SYNC","block_number":2,"block_timestamp":200,"tx_hash":"0x2","log_index":0,"address":"0xp","sync":{"reserve0":"1","reserve1":"2"}}
{"kind":"PAIR_CREATED","block_number":1,"block_timestamp":100,"tx_hash":"0x1","log_index":5,"address":"0xf","pair_created":{"token0":"0xa","token1":"0xb","pair":"0xp"}}

{"kind":"SYNC","block_number":1,"block_timestamp":100,"tx_hash":"0x1","log_index":6,"address":"0xp","sync":{"reserve0":"0","reserve1":"0"}}
`

func TestReaderSource_SortsEvents(t *testing.T) {
	src, err := NewReaderSource(strings.NewReader(replayFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", src.Len())
	}

	ctx := context.Background()
	var ids []string
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, ev.ID())
	}

	want := []string{"1:0x1:5", "1:0x1:6", "2:0x2:0"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func TestReaderSource_RejectsDuplicates(t *testing.T) {
	line := `{"kind":"SYNC","block_number":1,"tx_hash":"0x1","log_index":0,"address":"0xp","sync":{"reserve0":"1","reserve1":"1"}}`
	_, err := NewReaderSource(strings.NewReader(line + "\n" + line + "\n"))
	if !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestReaderSource_ReportsLine(t *testing.T) {
	_, err := NewReaderSource(strings.NewReader("\n{\"kind\":\"nope\"}\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error mentioning line 2, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte(replayFixture), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()
	if src.Len() != 3 {
		t.Errorf("Len() = %d, want 3", src.Len())
	}

	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSource_Cancelled(t *testing.T) {
	src, err := NewReaderSource(strings.NewReader(replayFixture))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
