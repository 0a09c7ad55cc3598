package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"exchange-indexer/internal/domain"
)

// maxLineBytes bounds one JSON line of a replay file.
const maxLineBytes = 1 << 20

// FileSource replays a JSON Lines file of events.
// The whole file is decoded up front, sorted and checked for duplicates.
type FileSource struct {
	events []*domain.Event
	pos    int
}

// NewFileSource opens and decodes a replay file.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	src, err := NewReaderSource(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// NewReaderSource decodes JSON Lines from r. Blank lines are skipped.
func NewReaderSource(r io.Reader) (*FileSource, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var events []*domain.Event
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	SortEvents(events)
	if err := ValidateOrdering(events); err != nil {
		return nil, err
	}
	return &FileSource{events: events}, nil
}

// Next implements Source.
func (s *FileSource) Next(ctx context.Context) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// Len returns the number of events in the file.
func (s *FileSource) Len() int {
	return len(s.events)
}

// Close implements Source.
func (s *FileSource) Close() error {
	return nil
}

var _ Source = (*FileSource)(nil)
