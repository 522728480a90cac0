// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kar is an api for an lz4 backed file format.
// It's purpose is to be well suited for streaming resources
// from it. It's designed to be memory mapped, so (unlike tar) it knows
// where all the files are located before they're read. This nescesitates
// a bit of an unusual setup, where the archive itself is not compressed in
// any form, rather every file is individually compressed, so it could be immediately
// read from it's place and decompressed on the fly. This somewhat compromises
// space efficiency, but space efficiency is not the primary goal of this
// package. It instead focuses on getting resources from disk to a usable
// state as fast as possible. It can be read from concurrently.
//
// Layout: magic, a fixed size header length field, the gob encoded
// Header, then every file's compressed data. Index offsets are relative
// to the end of the header.
package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/pkg/errors"
)

// package errors
var (
	ErrFileFormat   = errors.New("corrupted or not a kar archive")
	ErrFileNotFound = errors.New("file not present in the archive")
	ErrDuplicate    = errors.New("file with the same name already added")
	ErrIOMisc       = errors.New("some unknown error unhandled by the io occured")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 16
)

// Magic starts every kar archive.
var Magic = [MagicLength]byte{'K', 'A', 'R', '\x00'}

// IndexEntry is info for one file in the file index.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for kar files.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

// Find returns the index entry for name.
func (h *Header) Find(name string) (IndexEntry, bool) {
	for _, e := range h.Index {
		if e.Name == name {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// Names lists the files in the archive in index order.
func (h *Header) Names() []string {
	names := make([]string, len(h.Index))
	for i, e := range h.Index {
		names[i] = e.Name
	}
	return names
}

// int64ToBinary writes num little endian at the start of the fixed
// size header length field, the rest of the field stays zero.
func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSizeNumberLength))
	if err := binary.Write(buf, binary.LittleEndian, &num); err != nil {
		panic(err) // writes to a bytes.Buffer do not fail
	}
	numBytes := make([]byte, HeaderSizeNumberLength)
	copy(numBytes, buf.Bytes())
	return numBytes
}

func binaryToint64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(bts))
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return nil
}
