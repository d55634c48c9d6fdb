package events

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

// Field numbers of a journal record.
const (
	fieldSlot    protowire.Number = 1 // sint64
	fieldAddress protowire.Number = 2 // bytes, 6 long
	fieldOutcome protowire.Number = 3 // varint
	fieldAt      protowire.Number = 4 // fixed64, unix nanoseconds
)

// maxRecordSize bounds a single framed record.
const maxRecordSize = 64

// Journal is a Sink that appends every event to w as a varint length-prefixed record in
// protobuf wire format. Write failures are latched: the first one is kept, reported by
// Err, and further events are dropped.
type Journal struct {
	mu    sync.Mutex
	w     io.Writer
	log   *zap.SugaredLogger
	body  []byte
	frame []byte
	count uint64
	err   error
}

func NewJournal(w io.Writer, log *zap.SugaredLogger) *Journal {
	return &Journal{
		w:     w,
		log:   log,
		body:  make([]byte, 0, maxRecordSize),
		frame: make([]byte, 0, maxRecordSize+binary.MaxVarintLen64),
	}
}

func (j *Journal) OnEvent(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}

	j.body = appendRecord(j.body[:0], ev)
	j.frame = protowire.AppendVarint(j.frame[:0], uint64(len(j.body)))
	j.frame = append(j.frame, j.body...)

	if _, err := j.w.Write(j.frame); err != nil {
		j.err = errors.NewTableError(err, errors.ErrJournalWriteFailed, "Failed to append event to journal").
			WithSlot(ev.Slot).
			WithAddress(ev.Address.String()).
			WithDetail("records", j.count)
		j.log.Errorw("Journal write failed, further events are dropped", "records", j.count, "error", err)
		return
	}
	j.count++
}

// Close closes the underlying writer if it is an io.Closer. Events arriving after Close
// are dropped.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err == nil {
		j.err = errors.NewTableError(nil, errors.ErrTableClosed, "journal is closed")
	}
	if c, ok := j.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Count returns the number of records written.
func (j *Journal) Count() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Err returns what stopped the journal: the first write failure, or a closed error after Close.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func appendRecord(b []byte, ev Event) []byte {
	b = protowire.AppendTag(b, fieldSlot, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(ev.Slot)))
	b = protowire.AppendTag(b, fieldAddress, protowire.BytesType)
	b = protowire.AppendBytes(b, ev.Address[:])
	b = protowire.AppendTag(b, fieldOutcome, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ev.Outcome))
	if !ev.At.IsZero() {
		b = protowire.AppendTag(b, fieldAt, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, uint64(ev.At.UnixNano()))
	}
	return b
}

// JournalReader decodes records written by a Journal.
type JournalReader struct {
	r   *bufio.Reader
	buf []byte
}

func NewJournalReader(r io.Reader) *JournalReader {
	return &JournalReader{r: bufio.NewReader(r), buf: make([]byte, maxRecordSize)}
}

// Next returns the next event. It returns io.EOF when the stream ends cleanly on a record
// boundary.
func (jr *JournalReader) Next() (Event, error) {
	size, err := binary.ReadUvarint(jr.r)
	if err != nil {
		if err == io.EOF {
			return Event{}, io.EOF
		}
		return Event{}, corrupt(err, "Failed to read journal record length")
	}
	if size > maxRecordSize {
		return Event{}, corrupt(nil, fmt.Sprintf("journal record of %d bytes exceeds limit of %d", size, maxRecordSize))
	}

	body := jr.buf[:size]
	if _, err := io.ReadFull(jr.r, body); err != nil {
		return Event{}, corrupt(err, "Truncated journal record")
	}

	return decodeRecord(body)
}

func decodeRecord(b []byte) (Event, error) {
	ev := Event{Slot: NoSlot}
	var sawAddress bool

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Event{}, corrupt(protowire.ParseError(n), "Malformed journal field tag")
		}
		b = b[n:]

		switch {
		case num == fieldSlot && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, corrupt(protowire.ParseError(n), "Malformed journal slot")
			}
			ev.Slot = int(protowire.DecodeZigZag(v))
			b = b[n:]

		case num == fieldAddress && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Event{}, corrupt(protowire.ParseError(n), "Malformed journal address")
			}
			addr, err := macaddr.FromBytes(v)
			if err != nil {
				return Event{}, corrupt(err, "Journal address has the wrong length")
			}
			ev.Address = addr
			sawAddress = true
			b = b[n:]

		case num == fieldOutcome && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, corrupt(protowire.ParseError(n), "Malformed journal outcome")
			}
			ev.Outcome = Outcome(v)
			b = b[n:]

		case num == fieldAt && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return Event{}, corrupt(protowire.ParseError(n), "Malformed journal timestamp")
			}
			ev.At = time.Unix(0, int64(v)).UTC()
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Event{}, corrupt(protowire.ParseError(n), "Malformed unknown journal field")
			}
			b = b[n:]
		}
	}

	if !sawAddress {
		return Event{}, corrupt(nil, "Journal record has no address")
	}
	return ev, nil
}

func corrupt(err error, msg string) error {
	return errors.NewTableError(err, errors.ErrJournalCorrupt, msg)
}
