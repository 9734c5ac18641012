package store

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/ssargent/gridstore/pkg/codec"
)

// maxRecordBody bounds key plus value so a damaged length field cannot
// trigger a huge allocation
const maxRecordBody = 1 << 30

// LogReader provides sequential and random access to records in a log file
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	codec  *codec.RecordCodec
	offset int64
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		codec:  codec.NewRecordCodec(),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// ReadNext reads the next record from the current offset. It returns io.EOF
// at a clean end of file and ErrCorruption for a torn or invalid record.
func (r *LogReader) ReadNext() (*codec.Record, error) {
	header := make([]byte, codec.HeaderSize)
	if _, err := io.ReadFull(r.reader, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}

	hdr, err := r.codec.DecodeHeader(header)
	if err != nil || uint64(hdr.KeySize)+uint64(hdr.ValueSize) > maxRecordBody {
		return nil, ErrCorruption
	}

	full := make([]byte, codec.HeaderSize+int(hdr.KeySize)+int(hdr.ValueSize))
	copy(full, header)
	if _, err := io.ReadFull(r.reader, full[codec.HeaderSize:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrCorruption
		}
		return nil, err
	}

	record, err := r.decode(full)
	if err != nil {
		return nil, err
	}
	r.offset += int64(len(full))
	return record, nil
}

// ReadAt reads the record starting at offset without moving the
// sequential cursor
func (r *LogReader) ReadAt(offset int64) (*codec.Record, error) {
	header := make([]byte, codec.HeaderSize)
	if _, err := r.file.ReadAt(header, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrCorruption
		}
		return nil, err
	}

	hdr, err := r.codec.DecodeHeader(header)
	if err != nil || uint64(hdr.KeySize)+uint64(hdr.ValueSize) > maxRecordBody {
		return nil, ErrCorruption
	}

	full := make([]byte, codec.HeaderSize+int(hdr.KeySize)+int(hdr.ValueSize))
	copy(full, header)
	if len(full) > codec.HeaderSize {
		if _, err := r.file.ReadAt(full[codec.HeaderSize:], offset+codec.HeaderSize); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrCorruption
			}
			return nil, err
		}
	}

	return r.decode(full)
}

func (r *LogReader) decode(full []byte) (*codec.Record, error) {
	record, err := r.codec.Decode(full)
	if err != nil {
		return nil, ErrCorruption
	}
	if err := record.Validate(); err != nil {
		return nil, ErrCorruption
	}
	return record, nil
}

// Seek sets the read offset
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	r.reader.Reset(r.file)
	r.offset = offset
	return nil
}

// Offset returns the current read offset
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator for records
func (r *LogReader) Iterator() RecordIterator {
	return &logRecordIterator{reader: r}
}

// Close closes the log reader
func (r *LogReader) Close() error {
	return r.file.Close()
}

type logRecordIterator struct {
	reader *LogReader
	record *codec.Record
	err    error
}

func (it *logRecordIterator) Next() bool {
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *logRecordIterator) Record() *codec.Record {
	return it.record
}

// Err returns the error that stopped iteration, nil at a clean end of file
func (it *logRecordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *logRecordIterator) Close() error {
	// the reader is owned by the caller
	return nil
}
