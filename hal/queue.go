package hal

import (
	"io"
	"sync"
)

// QueueSerial is a Serial whose input is pushed by a pump (stdin reader,
// window keyboard, test script) and whose output goes to a writer.
type QueueSerial struct {
	in     chan byte
	closed chan struct{}
	once   sync.Once

	mu  sync.Mutex
	out io.Writer
}

// NewQueueSerial returns a queue holding up to depth pending input bytes.
func NewQueueSerial(out io.Writer, depth int) *QueueSerial {
	if depth <= 0 {
		depth = 256
	}
	if out == nil {
		out = io.Discard
	}
	return &QueueSerial{
		in:     make(chan byte, depth),
		closed: make(chan struct{}),
		out:    out,
	}
}

// Push queues one input byte. It blocks while the queue is full and reports
// false once the queue is closed.
func (s *QueueSerial) Push(b byte) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.in <- b:
		return true
	case <-s.closed:
		return false
	}
}

// PushString queues every byte of str.
func (s *QueueSerial) PushString(str string) {
	for i := 0; i < len(str); i++ {
		if !s.Push(str[i]) {
			return
		}
	}
}

// Close ends the input. Reads drain what is queued, then return io.EOF.
func (s *QueueSerial) Close() {
	s.once.Do(func() { close(s.closed) })
}

func (s *QueueSerial) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var b byte
	select {
	case b = <-s.in:
	default:
		select {
		case b = <-s.in:
		case <-s.closed:
			select {
			case b = <-s.in:
			default:
				return 0, io.EOF
			}
		}
	}
	p[0] = b
	n := 1
	for n < len(p) {
		select {
		case b = <-s.in:
			p[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (s *QueueSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}
