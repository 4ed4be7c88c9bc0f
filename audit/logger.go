package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/safedep/dry/log"
)

const (
	flushBatchSize = 100
	flushInterval  = time.Second
)

// Logger is the append-only line-delimited JSON audit stream (spec.md
// §4.6). Records are buffered up to flushBatchSize or flushInterval,
// whichever comes first; a deny or a critical-severity record bypasses
// the buffer and flushes immediately, per spec.md's "deny verdicts and
// critical severities flush immediately".
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	buf    []Record
	ticker *time.Ticker
	done   chan struct{}
	active bool
}

// Open creates (or appends to) the audit file at path and starts its
// background flush timer. Callers should defer Close to flush and release
// the file on process exit.
func Open(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		file:   file,
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
		active: true,
	}

	go l.tick()

	return l, nil
}

func (l *Logger) tick() {
	for {
		select {
		case <-l.ticker.C:
			l.mu.Lock()
			l.flushLocked()
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

// Write appends record to the buffer, flushing immediately if it is a
// deny or a critical-severity record, or if the buffer has reached
// flushBatchSize.
func (l *Logger) Write(record Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return
	}

	l.buf = append(l.buf, record)

	if !record.Allowed || record.Severity == "critical" || len(l.buf) >= flushBatchSize {
		l.flushLocked()
	}
}

// flushLocked writes every buffered record to disk. Write failures are
// swallowed after a single warning log: failing to log the inability to
// log would recurse without bound (spec.md §6 "Propagation policy").
func (l *Logger) flushLocked() {
	if len(l.buf) == 0 {
		return
	}

	for _, record := range l.buf {
		data, err := json.Marshal(record)
		if err != nil {
			log.Warnf("audit: failed to marshal record %s: %v", record.ID, err)
			continue
		}

		if _, err := l.file.Write(append(data, '\n')); err != nil {
			log.Warnf("audit: failed to write record: %v", err)
			continue
		}
	}

	if err := l.file.Sync(); err != nil {
		log.Warnf("audit: failed to sync audit file: %v", err)
	}

	l.buf = l.buf[:0]
}

// Flush forces any buffered records to disk immediately. Intended to be
// called on termination-signal receipt (spec.md §4.6).
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushLocked()
}

// Close flushes any buffered records, stops the flush timer, and closes
// the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return nil
	}

	l.active = false
	l.flushLocked()
	l.mu.Unlock()

	l.ticker.Stop()
	close(l.done)

	return l.file.Close()
}
