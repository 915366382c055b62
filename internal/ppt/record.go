package ppt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const recHeaderSize = 8

// PowerPoint record types
const (
	rtDocument             = 0x03E8
	rtSlide                = 0x03EE
	rtSlidePersistAtom     = 0x03F3
	rtPPDrawingGroup       = 0x040B
	rtPPDrawing            = 0x040C
	rtOutlineTextRefAtom   = 0x0F9E
	rtTextHeaderAtom       = 0x0F9F
	rtTextCharsAtom        = 0x0FA0
	rtTextBytesAtom        = 0x0FA8
	rtSlideListWithText    = 0x0FF0
	rtUserEditAtom         = 0x0FF5
	rtCurrentUserAtom      = 0x0FF6
	rtPersistDirectoryAtom = 0x1772
)

// Office Art record types
const (
	rtDggContainer    = 0xF000
	rtBStoreContainer = 0xF001
	rtDgContainer     = 0xF002
	rtSpgrContainer   = 0xF003
	rtSpContainer     = 0xF004
	rtFBSE            = 0xF007
	rtFSp             = 0xF00A
	rtFOPT            = 0xF00B
	rtClientTextbox   = 0xF00D
	rtTertiaryFOPT    = 0xF122

	rtBlipFirst = 0xF018
	rtBlipLast  = 0xF117
)

// errTruncated reports a record whose declared length runs past its parent.
var errTruncated = errors.New("truncated record")

// record is one PowerPoint or Office Art record. Data aliases the stream
// bytes and must not be modified.
type record struct {
	Ver      uint8
	Instance uint16
	Type     uint16
	Data     []byte
}

func (r record) isContainer() bool { return r.Ver == 0xF }

// recScanner walks a flat sequence of sibling records.
type recScanner struct {
	data []byte
	pos  int
}

func newRecScanner(data []byte) *recScanner {
	return &recScanner{data: data}
}

// next returns the next record, or io.EOF when the sequence is exhausted.
func (s *recScanner) next() (record, error) {
	if s.pos >= len(s.data) {
		return record{}, io.EOF
	}
	rec, n, err := decodeRecord(s.data[s.pos:])
	if err != nil {
		return record{}, fmt.Errorf("record at offset %d: %w", s.pos, err)
	}
	s.pos += n
	return rec, nil
}

func decodeRecord(b []byte) (record, int, error) {
	if len(b) < recHeaderSize {
		return record{}, 0, errTruncated
	}
	verInst := binary.LittleEndian.Uint16(b[0:2])
	rec := record{
		Ver:      uint8(verInst & 0x0F),
		Instance: verInst >> 4,
		Type:     binary.LittleEndian.Uint16(b[2:4]),
	}
	size := binary.LittleEndian.Uint32(b[4:8])
	if uint64(size) > uint64(len(b)-recHeaderSize) {
		return record{}, 0, errTruncated
	}
	end := recHeaderSize + int(size)
	rec.Data = b[recHeaderSize:end:end]
	return rec, end, nil
}

// readRecordAt decodes the record starting at offset off of a stream.
func readRecordAt(stream []byte, off uint32) (record, error) {
	if uint64(off) >= uint64(len(stream)) {
		return record{}, fmt.Errorf("offset %d outside stream of %d bytes", off, len(stream))
	}
	rec, _, err := decodeRecord(stream[off:])
	if err != nil {
		return record{}, fmt.Errorf("record at offset %d: %w", off, err)
	}
	return rec, nil
}

// children decodes the immediate children of a container record.
func (r record) children() ([]record, error) {
	var out []record
	s := newRecScanner(r.Data)
	for {
		child, err := s.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, child)
	}
}

// child returns the first immediate child of type typ. Trailing garbage after
// a match is ignored.
func (r record) child(typ uint16) (record, bool) {
	s := newRecScanner(r.Data)
	for {
		c, err := s.next()
		if err != nil {
			return record{}, false
		}
		if c.Type == typ {
			return c, true
		}
	}
}

func u16(b []byte, off int) uint16 {
	if off+2 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint16(b[off:])
}

func u32(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}
