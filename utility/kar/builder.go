// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	return &Builder{
		header: header,
		names:  map[string]bool{},
	}
}

type compressedFile struct {
	Name string
	Size int64
	Data []byte
}

// Builder is the high level builder for the archive format.
// Archives are versioned and cannot be appended to, this Builder
// is the way to create an archive. Whenever Add is called the data
// is compressed right away, WriteTo then lays the files out
// and writes them together with the index.
type Builder struct {
	header Header

	mutex sync.Mutex
	names map[string]bool
	files []compressedFile
}

// Add compresses everything read from r and stores it under name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(name string, r io.Reader) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	written, err := io.Copy(writer, r)
	if err != nil {
		return errors.Wrapf(err, "kar: compressing %s", name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "kar: compressing %s", name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.names[name] {
		return errors.Wrap(ErrDuplicate, name)
	}
	b.names[name] = true
	b.files = append(b.files, compressedFile{
		Name: name,
		Size: written,
		Data: compressed.Bytes(),
	})
	return nil
}

// Len returns the number of files added so far.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.files)
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil
	var offset int64
	for _, f := range b.files {
		header.Index = append(header.Index, IndexEntry{
			Name:           f.Name,
			Offset:         offset,
			Size:           f.Size,
			CompressedSize: int64(len(f.Data)),
		})
		offset += int64(len(f.Data))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "kar: encoding header")
	}

	chunks := [][]byte{
		Magic[:],
		int64ToBinary(int64(len(rawHeader))),
		rawHeader,
	}
	for _, f := range b.files {
		chunks = append(chunks, f.Data)
	}

	var total int64
	for _, chunk := range chunks {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
