package transcript

import (
	"bufio"
	"os"
)

// Stream is a single-pass pull iterator over a transcript file. Consumers
// may stop early without reading the rest of the file; Close releases the
// underlying handle either way.
type Stream struct {
	file    *os.File
	scanner *bufio.Scanner
	pending []Entry
	done    bool
}

// Open opens a transcript for streaming. A missing or unreadable file
// yields an empty stream rather than an error, since sessions can be
// deleted between enumeration and processing.
func Open(path string) *Stream {
	f, err := os.Open(path)
	if err != nil {
		return &Stream{done: true}
	}

	sc := bufio.NewScanner(f)
	// Transcript lines routinely exceed bufio's default 64K limit.
	sc.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	return &Stream{file: f, scanner: sc}
}

// Next returns the next entry, or false when the stream is exhausted.
func (s *Stream) Next() (*Entry, bool) {
	for {
		if len(s.pending) > 0 {
			e := s.pending[0]
			s.pending = s.pending[1:]
			return &e, true
		}
		if s.done {
			return nil, false
		}
		if !s.scanner.Scan() {
			s.done = true
			_ = s.Close()
			return nil, false
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.pending = parseLine(line)
	}
}

// Collect drains the stream into a slice.
func (s *Stream) Collect() []Entry {
	var entries []Entry
	for {
		e, ok := s.Next()
		if !ok {
			return entries
		}
		entries = append(entries, *e)
	}
}

// Close releases the underlying file. Safe to call more than once.
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}
