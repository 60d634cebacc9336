// Package trace records touch events, stores them as a stream of CBOR
// items and renders them for inspection.
package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"touchpanel.dev/driver/cst820"
)

type Kind uint8

const (
	TouchEvent Kind = iota
	ReleaseEvent
)

func (k Kind) String() string {
	switch k {
	case TouchEvent:
		return "touch"
	case ReleaseEvent:
		return "release"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is a recorded touch or release. Coordinates are in display
// space.
type Event struct {
	// Offset from the start of the recording.
	Offset time.Duration `cbor:"1,keyasint"`
	Kind   Kind          `cbor:"2,keyasint"`
	ID     uint8         `cbor:"3,keyasint,omitempty"`
	State  uint8         `cbor:"4,keyasint,omitempty"`
	X      uint16        `cbor:"5,keyasint,omitempty"`
	Y      uint16        `cbor:"6,keyasint,omitempty"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Sink stores recorded events.
type Sink interface {
	Record(e Event) error
}

// Recorder is a cst820.Listener that timestamps events and passes them to
// its sinks. It is safe for concurrent use; touches and releases are
// delivered from different goroutines.
type Recorder struct {
	mu    sync.Mutex
	sinks []Sink
	start time.Time
	now   func() time.Time
	err   error
}

func NewRecorder(sinks ...Sink) *Recorder {
	return &Recorder{
		sinks: sinks,
		start: time.Now(),
		now:   time.Now,
	}
}

func (r *Recorder) Touch(tp cst820.TouchPoint) {
	r.record(Event{Kind: TouchEvent, ID: tp.ID, State: tp.State, X: tp.X, Y: tp.Y})
}

func (r *Recorder) Release() {
	r.record(Event{Kind: ReleaseEvent})
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Offset = r.now().Sub(r.start)
	for _, s := range r.sinks {
		if err := s.Record(e); err != nil && r.err == nil {
			r.err = fmt.Errorf("trace: %w", err)
		}
	}
}

// Err returns the first error reported by a sink.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Writer encodes events to an io.Writer.
type Writer struct {
	enc *cbor.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

func (w *Writer) Record(e Event) error {
	return w.enc.Encode(e)
}

// Buffer keeps events in memory.
type Buffer struct {
	Events []Event
}

func (b *Buffer) Record(e Event) error {
	b.Events = append(b.Events, e)
	return nil
}

// Reader decodes events written by a Writer.
type Reader struct {
	src *countingReader
	dec *cbor.Decoder
}

func NewReader(r io.Reader) *Reader {
	src := &countingReader{r: r}
	return &Reader{src: src, dec: decMode.NewDecoder(src)}
}

// countingReader counts the bytes read from r.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// Next returns the next event, or io.EOF at the end of the stream. A
// stream ending inside an event returns io.ErrUnexpectedEOF.
func (r *Reader) Next() (Event, error) {
	var e Event
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			// The decoder reports a partial last item as io.EOF.
			if r.src.n > r.dec.NumBytesRead() {
				return Event{}, fmt.Errorf("trace: %w", io.ErrUnexpectedEOF)
			}
			return Event{}, io.EOF
		}
		return Event{}, fmt.Errorf("trace: %w", err)
	}
	return e, nil
}

// ReadAll decodes every event of r.
func ReadAll(r io.Reader) ([]Event, error) {
	tr := NewReader(r)
	var events []Event
	for {
		e, err := tr.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

// Replay delivers events to l in order, without delay.
func Replay(events []Event, l cst820.Listener) {
	for _, e := range events {
		switch e.Kind {
		case TouchEvent:
			l.Touch(cst820.TouchPoint{ID: e.ID, State: e.State, X: e.X, Y: e.Y})
		case ReleaseEvent:
			l.Release()
		}
	}
}
