package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errSinkClosed = errors.New("logger: sink closed")

// asyncSink fans formatted lines out to several writers from one goroutine,
// so handlers never block on slow outputs unless the queue is full.
type asyncSink struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	outs []*bufio.Writer
	err  error
}

func newAsyncSink(writers []io.Writer, bufSize int) *asyncSink {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	s := &asyncSink{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, w := range writers {
		if w != nil {
			s.outs = append(s.outs, bufio.NewWriterSize(w, bufSize))
		}
	}
	go s.run()
	return s
}

func (s *asyncSink) run() {
	defer close(s.done)
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				_ = s.flushAll()
				return
			}
			s.fail(s.writeLine(line))
		case ack := <-s.flushes:
			ack <- s.flushAll()
		}
	}
}

// Write queues a copy of p. When the queue is full it blocks rather than drop lines.
func (s *asyncSink) Write(p []byte) error {
	if err := s.lastErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	select {
	case <-s.done:
		return errSinkClosed
	default:
	}
	s.lines <- append([]byte(nil), p...)
	return nil
}

// Flush blocks until everything queued so far reached the outputs.
func (s *asyncSink) Flush() error {
	ack := make(chan error, 1)
	select {
	case s.flushes <- ack:
		return errors.Join(<-ack, s.lastErr())
	case <-s.done:
		return s.lastErr()
	}
}

// Close drains the queue and stops the writer goroutine.
func (s *asyncSink) Close() error {
	s.once.Do(func() { close(s.lines) })
	<-s.done
	return s.lastErr()
}

func (s *asyncSink) writeLine(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.outs {
		if _, err := out.Write(p); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (s *asyncSink) flushAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, out := range s.outs {
		errs = append(errs, out.Flush())
	}
	return errors.Join(errs...)
}

func (s *asyncSink) lastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *asyncSink) fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
