package logger

import (
	"bufio"
	"io"
	"sync"
)

// bufferedSink serializes log writes through a single background goroutine.
// The config can only produce two destinations, the console and at most one
// log file, so both are joined into one buffered stream instead of a
// per-sink fan-out.
type bufferedSink struct {
	out      *bufio.Writer
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu       sync.Mutex
	writeErr error
}

func newBufferedSink(console, file io.Writer, bufSize int) *bufferedSink {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	dst := console
	if dst == nil {
		dst = io.Discard
	}
	if file != nil {
		dst = io.MultiWriter(dst, file)
	}
	s := &bufferedSink{
		out:      bufio.NewWriterSize(dst, bufSize),
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *bufferedSink) loop() {
	for {
		select {
		case line, ok := <-s.queue:
			if !ok {
				s.setErr(s.out.Flush())
				close(s.done)
				return
			}
			if len(line) == 0 {
				continue
			}
			if _, err := s.out.Write(line); err != nil {
				s.setErr(err)
			}
		case ack := <-s.flushReq:
			// Queued lines precede the flush request, so write them first.
			s.drainQueue()
			ack <- s.out.Flush()
		}
	}
}

func (s *bufferedSink) drainQueue() {
	for {
		select {
		case line, ok := <-s.queue:
			if !ok {
				return
			}
			if len(line) == 0 {
				continue
			}
			if _, err := s.out.Write(line); err != nil {
				s.setErr(err)
			}
		default:
			return
		}
	}
}

// Write enqueues one formatted line. A full queue falls back to a blocking
// send so lines are delayed rather than dropped.
func (s *bufferedSink) Write(p []byte) error {
	if err := s.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case s.queue <- line:
	default:
		s.queue <- line
	}
	return nil
}

// Flush waits until every queued line reaches the underlying writers.
func (s *bufferedSink) Flush() error {
	if err := s.getErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	s.flushReq <- ack
	return <-ack
}

// Close drains the queue, flushes, and reports the first write error seen.
func (s *bufferedSink) Close() error {
	s.once.Do(func() {
		close(s.queue)
	})
	<-s.done
	return s.getErr()
}

func (s *bufferedSink) getErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

func (s *bufferedSink) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr == nil {
		s.writeErr = err
	}
}
