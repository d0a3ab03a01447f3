package tiffcomposite

import (
	"encoding/binary"
	"fmt"
)

// order resolves a ByteOrder into the stdlib binary.ByteOrder that encodes
// it, the same mapping the teacher keeps as a single package-level
// tiffByteOrder variable (writer.go), generalized here since a maker note
// can switch byte order mid-stream.
func order(bo ByteOrder) binary.ByteOrder {
	if bo == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func putUint16(buf []byte, v uint16, bo ByteOrder) uint32 {
	order(bo).PutUint16(buf, v)
	return 2
}

func putUint32(buf []byte, v uint32, bo ByteOrder) uint32 {
	order(bo).PutUint32(buf, v)
	return 4
}

func putInt16(buf []byte, v int16, bo ByteOrder) uint32 {
	order(bo).PutUint16(buf, uint16(v))
	return 2
}

func getUint16(buf []byte, bo ByteOrder) uint16 {
	return order(bo).Uint16(buf)
}

func getUint32(buf []byte, bo ByteOrder) uint32 {
	return order(bo).Uint32(buf)
}

// OffsetID names a deferred target offset registered with an IoSink via
// setTarget, to be patched by a collaborator that owns the outer file
// header (e.g. a CR2 writer patching in the RAW IFD offset after the
// whole TIFF structure has been streamed).
type OffsetID int

// CR2RawIfdOffset is the target id under which the root directory
// registers its own offset when its group is the Canon CR2 raw IFD
// (group() == ifd3), per tiffcomposite_int.cpp's TiffDirectory::doWrite.
const CR2RawIfdOffset OffsetID = 1

// OffsetWriter receives deferred offset patches recorded by IoSink. It is
// an external collaborator: something downstream of the composite tree
// owns the actual patch pass once the full byte stream is known.
type OffsetWriter interface {
	SetTarget(id OffsetID, target uint32)
}

// ErrOffsetOutOfRange is returned when a target offset does not fit the
// range the caller asked to record or encode it in.
var ErrOffsetOutOfRange = fmt.Errorf("offset out of range")

// IoSink sequentially writes bytes to an underlying io.Writer-like sink,
// lazily prepending a fixed header on first real write, and lets callers
// register named offset targets for later patching. It generalizes the
// teacher's direct os.File/io.Writer writes (writer.go's writeHeader /
// writeIFD) into a single write path that nested serializers can all use
// unconditionally, whether or not the outermost header is known yet.
type IoSink struct {
	w            ByteSink
	header       []byte
	wroteHeader  bool
	offsetWriter OffsetWriter
	pos          int64
}

// ByteSink is the minimal write surface IoSink needs from its underlying
// destination.
type ByteSink interface {
	Write(p []byte) (int, error)
}

// NewIoSink wraps w. header may be nil, meaning there is nothing to
// prepend lazily (everything is written immediately).
func NewIoSink(w ByteSink, header []byte, ow OffsetWriter) *IoSink {
	s := &IoSink{w: w, header: header, offsetWriter: ow}
	if len(header) == 0 {
		s.wroteHeader = true
	}
	return s
}

func (s *IoSink) emitHeader() error {
	if s.wroteHeader {
		return nil
	}
	s.wroteHeader = true
	n, err := s.w.Write(s.header)
	s.pos += int64(n)
	return err
}

// Write emits p, writing the lazy header first if this is the first call
// that actually advances the stream position.
func (s *IoSink) Write(p []byte) (int, error) {
	if len(p) > 0 {
		if err := s.emitHeader(); err != nil {
			return 0, err
		}
	}
	n, err := s.w.Write(p)
	s.pos += int64(n)
	return n, err
}

// Putb writes a single byte, honoring the same lazy-header rule as Write.
func (s *IoSink) Putb(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// SetTarget records offset for later patching under id. offset must fit a
// uint32 (the TIFF offset domain); anything else is ErrOffsetOutOfRange.
func (s *IoSink) SetTarget(id OffsetID, offset int64) error {
	if offset < 0 || offset > 0xffffffff {
		return ErrOffsetOutOfRange
	}
	if s.offsetWriter != nil {
		s.offsetWriter.SetTarget(id, uint32(offset))
	}
	return nil
}
