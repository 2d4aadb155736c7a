package interp

import (
	"bufio"
	"fmt"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"
)

// FileCell backs a File @resource (§4.13a stdlib/fs): a real
// filesystem handle, since `rask run`'s interpreter executes against
// the actual host OS rather than a sandboxed filesystem model.
type FileCell struct {
	f      *os.File
	reader *bufio.Reader
	closed bool
}

func OpenFile(path string, write bool) (*FileCell, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileCell{f: f, reader: bufio.NewReader(f)}, nil
}

func (fc *FileCell) ReadToString() (string, error) {
	var sb []byte
	buf := make([]byte, 4096)
	for {
		n, err := fc.reader.Read(buf)
		sb = append(sb, buf[:n]...)
		if err != nil {
			break
		}
	}
	return string(sb), nil
}

func (fc *FileCell) Write(s string) (int, error) { return fc.f.WriteString(s) }

func (fc *FileCell) Close() error {
	if fc.closed {
		return nil
	}
	fc.closed = true
	return fc.f.Close()
}

// TcpListenerCell backs a TcpListener @resource (§4.13a stdlib/net).
type TcpListenerCell struct {
	ln     net.Listener
	closed bool
}

func Listen(addr string) (*TcpListenerCell, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TcpListenerCell{ln: ln}, nil
}

func (l *TcpListenerCell) Accept() (*TcpConnCell, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return &TcpConnCell{conn: c}, nil
}

func (l *TcpListenerCell) LocalAddr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *TcpListenerCell) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.ln.Close()
}

// TcpConnCell backs a TcpConnection @resource.
type TcpConnCell struct {
	conn   net.Conn
	closed bool
}

func Dial(addr string) (*TcpConnCell, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TcpConnCell{conn: c}, nil
}

func (c *TcpConnCell) Read(max int) (string, error) {
	buf := make([]byte, max)
	n, err := c.conn.Read(buf)
	return string(buf[:n]), err
}

func (c *TcpConnCell) Write(s string) (int, error) { return c.conn.Write([]byte(s)) }

func (c *TcpConnCell) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// SenderCell/ReceiverCell back Channel's Sender<T>/Receiver<T> halves,
// a directly-typed Go channel of Value — §4.13's "communicates via a
// one-shot channel" generalized to an arbitrary-capacity channel for
// user-level `Channel<T>.sender()/receiver()`.
type SenderCell struct {
	ch     chan Value
	closed *bool
	mu     *sync.Mutex
}

type ReceiverCell struct {
	ch chan Value
}

func NewChannel(capacity int) (*SenderCell, *ReceiverCell) {
	ch := make(chan Value, capacity)
	closed := false
	return &SenderCell{ch: ch, closed: &closed, mu: &sync.Mutex{}}, &ReceiverCell{ch: ch}
}

func (s *SenderCell) Send(v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *s.closed {
		return fmt.Errorf("interp: send on closed channel")
	}
	s.ch <- v
	return nil
}

func (s *SenderCell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !*s.closed {
		*s.closed = true
		close(s.ch)
	}
}

func (r *ReceiverCell) Recv() (Value, bool) {
	v, ok := <-r.ch
	return v, ok
}

// SharedCell backs Shared<T>: a mutex-protected cell, released by
// whatever scoped get/set call acquired it (§5: "Shared<T> RAII-scoped
// read/write").
type SharedCell struct {
	mu  sync.RWMutex
	val Value
}

func NewShared(v Value) *SharedCell { return &SharedCell{val: v} }

func (s *SharedCell) Get() Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

func (s *SharedCell) Set(v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
}

// InstantVal backs Instant: a captured point in time (§4.13a, used by
// the benchmark runner and `stdlib/time`).
type InstantVal struct{ t time.Time }

func Now() *InstantVal { return &InstantVal{t: time.Now()} }

func (i *InstantVal) Elapsed() *DurationVal { return &DurationVal{d: time.Since(i.t)} }

// DurationVal backs Duration.
type DurationVal struct{ d time.Duration }

func (d *DurationVal) Secs() int64   { return int64(d.d.Seconds()) }
func (d *DurationVal) Millis() int64 { return d.d.Milliseconds() }
func (d *DurationVal) Nanos() int64  { return d.d.Nanoseconds() }

// RngCell backs Rng: a seeded PRNG (§4.13a stdlib/random).
type RngCell struct{ r *rand.Rand }

func NewRng(seed int64) *RngCell { return &RngCell{r: rand.New(rand.NewSource(seed))} }

func (r *RngCell) NextI64() int64     { return r.r.Int63() }
func (r *RngCell) NextF64() float64   { return r.r.Float64() }
func (r *RngCell) Range(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Int63n(hi-lo)
}

// closeResource releases whatever @resource v holds, called both by
// an explicit `.close()` method call and by a `with ... as` block's
// implicit scope-exit cleanup.
func closeResource(v Value) error {
	switch v.Kind {
	case KindFile:
		return v.File.Close()
	case KindTcpListener:
		return v.Listener.Close()
	case KindTcpConnection:
		return v.Conn.Close()
	case KindSender:
		v.Sender.Close()
		return nil
	default:
		return nil
	}
}
