package execution

import (
	"bytes"
	"io"
	"sync"
)

// LineSplitter fans stderr out line by line: every line is archived, and
// lines containing the marker are withheld from the pass-through sink.
type LineSplitter struct {
	mu      sync.Mutex
	marker  []byte
	forward io.Writer
	archive io.Writer
	pending []byte
}

// NewLineSplitter creates a LineSplitter
func NewLineSplitter(marker string, forward, archive io.Writer) *LineSplitter {
	return &LineSplitter{marker: []byte(marker), forward: forward, archive: archive}
}

// Write buffers partial lines and routes every complete one
func (s *LineSplitter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, p...)
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			break
		}
		if err := s.route(s.pending[:i+1]); err != nil {
			return len(p), err
		}
		s.pending = s.pending[i+1:]
	}
	return len(p), nil
}

// Flush routes a trailing line that had no newline
func (s *LineSplitter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	line := s.pending
	s.pending = nil
	return s.route(line)
}

func (s *LineSplitter) route(line []byte) error {
	if _, err := s.archive.Write(line); err != nil {
		return err
	}
	if len(s.marker) > 0 && bytes.Contains(line, s.marker) {
		return nil
	}
	_, err := s.forward.Write(line)
	return err
}
