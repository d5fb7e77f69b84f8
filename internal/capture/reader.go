package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/mdevolde/trace-analyzer/internal/fsutil"
)

// ErrUnreadableCapture is returned when a capture source cannot be opened or
// is not a recognised capture format.
var ErrUnreadableCapture = errors.New("unreadable capture")

// pcapng section header block type; classic pcap magics are handled by pcapgo.
const pcapngMagic = 0x0A0D0D0A

// Record is a single captured record: arrival time plus raw link-layer bytes.
type Record struct {
	Timestamp time.Time
	Data      []byte
}

// Reader yields the records of one capture source in on-disk order.
// This abstraction enables unit testing without real capture files.
type Reader interface {
	// Next returns the next record, or io.EOF when the capture is exhausted.
	Next() (Record, error)

	// LinkType returns the link type declared by the capture.
	LinkType() layers.LinkType

	// Close releases the underlying source.
	Close() error
}

// fileReader adapts pcapgo readers to Reader.
type fileReader struct {
	next     func() (Record, error)
	linkType layers.LinkType
	closer   io.Closer
}

func (r *fileReader) Next() (Record, error)     { return r.next() }
func (r *fileReader) LinkType() layers.LinkType { return r.linkType }
func (r *fileReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// OpenFile opens a pcap or pcapng file through fsys. The format is detected
// from the leading magic number.
func OpenFile(fsys fsutil.FileSystem, path string) (Reader, error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableCapture, err)
	}

	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableCapture, path, err)
	}
	r.(*fileReader).closer = f
	return r, nil
}

// NewReader wraps an already-open capture stream. Closing the returned Reader
// does not close src.
func NewReader(src io.Reader) (Reader, error) {
	br := bufio.NewReader(src)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}

	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("pcapng: %w", err)
		}
		return &fileReader{
			linkType: ng.LinkType(),
			next: func() (Record, error) {
				data, ci, err := ng.ReadPacketData()
				return Record{Timestamp: ci.Timestamp, Data: data}, err
			},
		}, nil
	}

	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("pcap: %w", err)
	}
	return &fileReader{
		linkType: pr.LinkType(),
		next: func() (Record, error) {
			data, ci, err := pr.ReadPacketData()
			return Record{Timestamp: ci.Timestamp, Data: data}, err
		},
	}, nil
}

// MockReader implements Reader for testing.
type MockReader struct {
	mu sync.Mutex

	// Records holds the records to return from Next.
	Records []Record

	// ReadIndex tracks the current position in Records.
	ReadIndex int

	// ReadError, if set, is returned once ReadIndex reaches ErrorAt.
	ReadError error
	ErrorAt   int

	// Closed indicates whether Close was called.
	Closed bool

	// MockLinkType is the link type to return.
	MockLinkType layers.LinkType
}

// NewMockReader creates a MockReader over records with an Ethernet link type.
func NewMockReader(records []Record) *MockReader {
	return &MockReader{
		Records:      records,
		MockLinkType: layers.LinkTypeEthernet,
	}
}

// Next returns the next buffered record, or io.EOF.
func (m *MockReader) Next() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Closed {
		return Record{}, errors.New("reader closed")
	}
	if m.ReadError != nil && m.ReadIndex >= m.ErrorAt {
		return Record{}, m.ReadError
	}
	if m.ReadIndex >= len(m.Records) {
		return Record{}, io.EOF
	}
	rec := m.Records[m.ReadIndex]
	m.ReadIndex++
	return rec, nil
}

// LinkType returns the mock link type.
func (m *MockReader) LinkType() layers.LinkType {
	return m.MockLinkType
}

// Close marks the reader as closed.
func (m *MockReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

// AddRecord appends a record to the mock reader.
func (m *MockReader) AddRecord(data []byte, timestamp time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Records = append(m.Records, Record{Data: data, Timestamp: timestamp})
}
