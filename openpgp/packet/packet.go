// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packet implements parsing and serialization of OpenPGP
// signature packet bodies, as specified in RFC 4880, section 5.2.
package packet

import (
	"io"

	"github.com/openpgp-go/sigpacket/openpgp/errors"
)

// Version denotes the framing format of the packet a signature body
// arrived in: old (pre-RFC 4880) or new. It is metadata about the outer
// packet and does not influence the body grammar, except that embedded
// signatures always re-enter parsing as new-format.
type Version uint8

const (
	VersionOld Version = iota
	VersionNew
)

// readFull is the same as io.ReadFull except that reading fewer than
// len(buf) bytes surfaces as an errors.IncompleteError. The outer byte
// source may be an incrementally filled stream, so a short read there is
// retryable rather than structural damage.
func readFull(r io.Reader, buf []byte) (n int, err error) {
	n, err = io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = errors.IncompleteError("unexpected EOF")
	}
	return
}

// readSubpacketLength decodes the variable-width scalar length prefixing
// a signature subpacket: one octet below 192, two octets up to 8383 and
// a five-octet form introduced by the 255 marker. See RFC 4880, section
// 5.2.3.1. It operates on a fully materialized area slice, so truncation
// is structural.
func readSubpacketLength(data []byte) (length uint32, n int, err error) {
	if len(data) == 0 {
		return 0, 0, errors.StructuralError("truncated subpacket length")
	}
	switch {
	case data[0] < 192:
		return uint32(data[0]), 1, nil
	case data[0] < 255:
		if len(data) < 2 {
			return 0, 0, errors.StructuralError("truncated two-octet subpacket length")
		}
		return uint32(data[0]-192)<<8 + uint32(data[1]) + 192, 2, nil
	default:
		if len(data) < 5 {
			return 0, 0, errors.StructuralError("truncated five-octet subpacket length")
		}
		length = uint32(data[1])<<24 | uint32(data[2])<<16 | uint32(data[3])<<8 | uint32(data[4])
		return length, 5, nil
	}
}

// encodeSubpacketLength appends the shortest scalar encoding of length
// to buf.
func encodeSubpacketLength(buf []byte, length int) []byte {
	switch {
	case length < 192:
		return append(buf, byte(length))
	case length < 8384:
		length -= 192
		return append(buf, 192+byte(length>>8), byte(length))
	default:
		return append(buf, 255, byte(length>>24), byte(length>>16), byte(length>>8), byte(length))
	}
}
