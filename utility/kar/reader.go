// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"io"
	"io/ioutil"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Open opens the kar archived from r. It will also check
// if the file is actually a kar archive, will return an error
// when file incorrect.
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, MagicLength)
	if num, err := r.ReadAt(magic, 0); err != nil && err != io.EOF {
		return nil, err
	} else if num < MagicLength || string(magic) != string(Magic[:]) {
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if num, err := r.ReadAt(headerSizeBytes, MagicLength); err != nil && err != io.EOF {
		return nil, err
	} else if num < HeaderSizeNumberLength {
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToint64(headerSizeBytes)
	if err != nil || headerSize <= 0 {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeNumberLength); err != nil && err != io.EOF {
		return nil, err
	} else if int64(num) < headerSize {
		return nil, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, errors.Wrap(ErrFileFormat, err.Error())
	}

	return &Archive{
		reader:     r,
		header:     header,
		dataOffset: MagicLength + HeaderSizeNumberLength + headerSize,
	}, nil
}

// Archive provides concurrent io for a kar file, and can provide
// an io.Reader for each file separately to perform actions on.
type Archive struct {
	reader     io.ReaderAt
	header     Header
	dataOffset int64
}

// Header returns the archive header, index included.
func (a *Archive) Header() Header {
	return a.header
}

// ReadAll returns the entire contents of a file with a given name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "kar: reading %s", name)
	}
	if int64(len(data)) != r.entry.Size {
		return nil, errors.Wrapf(ErrFileFormat, "%s: size %d, index says %d", name, len(data), r.entry.Size)
	}
	return data, nil
}

// Open returns a Reader for a file in the Archive
func (a *Archive) Open(name string) (*Reader, error) {
	entry, ok := a.header.Find(name)
	if !ok {
		return nil, errors.Wrap(ErrFileNotFound, name)
	}
	section := io.NewSectionReader(a.reader, a.dataOffset+entry.Offset, entry.CompressedSize)
	return &Reader{
		entry:        entry,
		decompressor: lz4.NewReader(section),
	}, nil
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	entry        IndexEntry
	decompressor io.Reader
}

// Read reads already decompressed data
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.decompressor.Read(p)
}

// Size returns the decompressed size of the file.
func (r *Reader) Size() int64 {
	return r.entry.Size
}
