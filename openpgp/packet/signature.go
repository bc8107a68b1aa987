// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"time"

	"github.com/openpgp-go/sigpacket/openpgp/errors"
	"github.com/openpgp-go/sigpacket/openpgp/internal/encoding"
)

// maxEmbeddedDepth bounds the nesting of embedded signature subpackets.
// The wire format itself allows arbitrary nesting, which would let a
// small input drive unbounded recursion.
const maxEmbeddedDepth = 8

// Signature represents a signature packet body. See RFC 4880, section
// 5.2.
type Signature struct {
	// PacketVersion is the framing format of the packet the body arrived
	// in, passed through from the caller.
	PacketVersion Version
	// Version is the signature body version: 2, 3, 4 or 5.
	Version int

	SigType    SignatureType
	PubKeyAlgo PublicKeyAlgorithm
	Hash       HashAlgorithm

	// HashTag holds the leftmost 16 bits of the signed hash value, used
	// as a quick mismatch check before full verification.
	HashTag [2]byte

	// MPIs is the ordered multiprecision integer sequence comprising the
	// mathematical signature value. Its arity depends on PubKeyAlgo.
	MPIs []*encoding.MPI

	HashedSubpackets   []Subpacket
	UnhashedSubpackets []Subpacket

	// CreationTime and IssuerKeyId are populated from the fixed fields
	// of v2 and v3 signatures, which carry no subpackets. For v4 and v5
	// they are left unset; the equivalent values live in the subpacket
	// sequences and reconciling them is the caller's concern.
	CreationTime time.Time
	IssuerKeyId  *uint64
}

// ReadSignature reads one signature packet body from r. packetVersion
// is the framing format of the packet the body was extracted from. If r
// ends before the body is complete an errors.IncompleteError is
// returned, so callers filling a buffer incrementally can retry once
// more bytes arrive.
func ReadSignature(r io.Reader, packetVersion Version) (*Signature, error) {
	return readSignature(r, packetVersion, 0)
}

// ParseSignature parses a signature packet body from body. Trailing
// bytes beyond the signature value are ignored, as they are on the
// reader path.
func ParseSignature(packetVersion Version, body []byte) (*Signature, error) {
	return readSignature(bytes.NewReader(body), packetVersion, 0)
}

func readSignature(r io.Reader, packetVersion Version, depth int) (*Signature, error) {
	if depth > maxEmbeddedDepth {
		return nil, errors.StructuralError("signature packets nested too deeply")
	}

	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return nil, err
	}

	sig := &Signature{
		PacketVersion: packetVersion,
		Version:       int(buf[0]),
	}
	var err error
	switch buf[0] {
	case 2, 3:
		err = sig.parseV3Body(r)
	case 4, 5:
		err = sig.parseV4Body(r, depth)
	default:
		err = errors.UnsupportedError("signature packet version " + strconv.Itoa(int(buf[0])))
	}
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// parseV3Body parses the fixed-layout v2/v3 signature body following the
// version octet. See RFC 4880, section 5.2.2.
func (sig *Signature) parseV3Body(r io.Reader) error {
	// One-octet length of the following hashed material. MUST be 5.
	var lengthByte [1]byte
	if _, err := readFull(r, lengthByte[:]); err != nil {
		return err
	}
	if lengthByte[0] != 5 {
		return errors.StructuralError("hashed material length " + strconv.Itoa(int(lengthByte[0])))
	}

	// Signature type, creation time, issuer key ID, public-key
	// algorithm, hash algorithm and the left 16 bits of the signed hash.
	var buf [17]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	var ok bool
	if sig.SigType, ok = signatureTypeFromByte(buf[0]); !ok {
		return errors.UnsupportedError("signature type " + strconv.Itoa(int(buf[0])))
	}
	sig.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(buf[1:5])), 0)
	issuer := binary.BigEndian.Uint64(buf[5:13])
	sig.IssuerKeyId = &issuer
	if sig.PubKeyAlgo, ok = publicKeyAlgorithmFromByte(buf[13]); !ok {
		return errors.UnsupportedError("public key algorithm " + strconv.Itoa(int(buf[13])))
	}
	if sig.Hash, ok = hashAlgorithmFromByte(buf[14]); !ok {
		return errors.UnsupportedError("hash algorithm " + strconv.Itoa(int(buf[14])))
	}
	copy(sig.HashTag[:], buf[15:17])

	return sig.parseSignatureValue(r)
}

// parseV4Body parses the subpacket-carrying v4/v5 signature body
// following the version octet. See RFC 4880, section 5.2.3.
func (sig *Signature) parseV4Body(r io.Reader, depth int) error {
	var buf [3]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	var ok bool
	if sig.SigType, ok = signatureTypeFromByte(buf[0]); !ok {
		return errors.UnsupportedError("signature type " + strconv.Itoa(int(buf[0])))
	}
	if sig.PubKeyAlgo, ok = publicKeyAlgorithmFromByte(buf[1]); !ok {
		return errors.UnsupportedError("public key algorithm " + strconv.Itoa(int(buf[1])))
	}
	if sig.Hash, ok = hashAlgorithmFromByte(buf[2]); !ok {
		return errors.UnsupportedError("hash algorithm " + strconv.Itoa(int(buf[2])))
	}

	var err error
	if sig.HashedSubpackets, err = readSubpacketArea(r, depth); err != nil {
		return err
	}
	if sig.UnhashedSubpackets, err = readSubpacketArea(r, depth); err != nil {
		return err
	}

	if _, err := readFull(r, sig.HashTag[:]); err != nil {
		return err
	}
	return sig.parseSignatureValue(r)
}

// readSubpacketArea reads a two-octet area length and that many octets
// from the stream, then walks the materialized area as a subpacket
// sequence. A zero-length area yields an empty sequence.
func readSubpacketArea(r io.Reader, depth int) ([]Subpacket, error) {
	var lengthBytes [2]byte
	if _, err := readFull(r, lengthBytes[:]); err != nil {
		return nil, err
	}
	area := make([]byte, binary.BigEndian.Uint16(lengthBytes[:]))
	if _, err := readFull(r, area); err != nil {
		return nil, err
	}
	return parseSubpackets(area, depth)
}

// parseEmbeddedSignature re-enters signature parsing on the body of an
// embedded signature subpacket, tagged as new-format. The body is a
// fully materialized slice, so truncation inside it is structural even
// though the nested parser reports its own reads as incomplete.
func parseEmbeddedSignature(body []byte, depth int) (Subpacket, error) {
	sig, err := readSignature(bytes.NewReader(body), VersionNew, depth+1)
	if err != nil {
		if incomplete, ok := err.(errors.IncompleteError); ok {
			return nil, errors.StructuralError("truncated embedded signature: " + string(incomplete))
		}
		return nil, err
	}
	return &EmbeddedSignature{Signature: sig}, nil
}

// parseSignatureValue reads the multiprecision integers comprising the
// signature value. RSA keys sign with a single integer; DSA, ECDSA and
// EdDSA with exactly two. Private, experimental and any future
// algorithm codes deliberately fall back to the single-integer read so
// unknown algorithms keep parsing, at the cost of misreading a
// hypothetical variable-arity one.
func (sig *Signature) parseSignatureValue(r io.Reader) error {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		return sig.readMPIs(r, 2)
	default:
		return sig.readMPIs(r, 1)
	}
}

func (sig *Signature) readMPIs(r io.Reader, count int) error {
	sig.MPIs = make([]*encoding.MPI, 0, count)
	for i := 0; i < count; i++ {
		mpi := new(encoding.MPI)
		if _, err := mpi.ReadFrom(r); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.IncompleteError("signature value truncated")
			}
			return err
		}
		sig.MPIs = append(sig.MPIs, mpi)
	}
	return nil
}

// Serialize writes the signature packet body to w, excluding the outer
// packet framing, mirroring what the parser consumes.
func (sig *Signature) Serialize(w io.Writer) error {
	body, err := sig.bodyBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// bodyBytes encodes the complete signature body, selecting the grammar
// matching sig.Version.
func (sig *Signature) bodyBytes() ([]byte, error) {
	switch sig.Version {
	case 2, 3:
		return sig.v3BodyBytes()
	case 4, 5:
		return sig.v4BodyBytes()
	default:
		return nil, errors.InvalidArgumentError("signature packet version " + strconv.Itoa(sig.Version))
	}
}

func (sig *Signature) v3BodyBytes() ([]byte, error) {
	if sig.IssuerKeyId == nil {
		return nil, errors.InvalidArgumentError("v3 signature without issuer key ID")
	}

	body := make([]byte, 0, 19)
	body = append(body, byte(sig.Version), 5, byte(sig.SigType))
	body = binary.BigEndian.AppendUint32(body, uint32(sig.CreationTime.Unix()))
	body = binary.BigEndian.AppendUint64(body, *sig.IssuerKeyId)
	body = append(body, byte(sig.PubKeyAlgo), byte(sig.Hash))
	body = append(body, sig.HashTag[:]...)
	return sig.appendMPIs(body), nil
}

func (sig *Signature) v4BodyBytes() ([]byte, error) {
	body := []byte{byte(sig.Version), byte(sig.SigType), byte(sig.PubKeyAlgo), byte(sig.Hash)}

	var err error
	if body, err = appendSubpacketArea(body, sig.HashedSubpackets); err != nil {
		return nil, err
	}
	if body, err = appendSubpacketArea(body, sig.UnhashedSubpackets); err != nil {
		return nil, err
	}

	body = append(body, sig.HashTag[:]...)
	return sig.appendMPIs(body), nil
}

func appendSubpacketArea(body []byte, subpackets []Subpacket) ([]byte, error) {
	area, err := serializeSubpackets(nil, subpackets)
	if err != nil {
		return nil, err
	}
	if len(area) > 0xffff {
		return nil, errors.InvalidArgumentError("subpacket area too large")
	}
	body = binary.BigEndian.AppendUint16(body, uint16(len(area)))
	return append(body, area...), nil
}

func (sig *Signature) appendMPIs(body []byte) []byte {
	for _, mpi := range sig.MPIs {
		body = append(body, mpi.EncodedBytes()...)
	}
	return body
}
