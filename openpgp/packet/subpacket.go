package packet

import (
	"encoding/binary"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/openpgp-go/sigpacket/openpgp/errors"
)

// SubpacketType is the one-octet type tag of a signature subpacket. See
// RFC 4880, section 5.2.3.1.
type SubpacketType uint8

const (
	SubpacketTypeCreationTime            SubpacketType = 2
	SubpacketTypeSigExpiration           SubpacketType = 3
	SubpacketTypeExportableCertification SubpacketType = 4
	SubpacketTypeTrustSignature          SubpacketType = 5
	SubpacketTypeRegularExpression       SubpacketType = 6
	SubpacketTypeRevocable               SubpacketType = 7
	SubpacketTypeKeyExpiration           SubpacketType = 9
	SubpacketTypePrefSymmetricAlgos      SubpacketType = 11
	SubpacketTypeRevocationKey           SubpacketType = 12
	SubpacketTypeIssuer                  SubpacketType = 16
	SubpacketTypeNotationData            SubpacketType = 20
	SubpacketTypePrefHashAlgos           SubpacketType = 21
	SubpacketTypePrefCompression         SubpacketType = 22
	SubpacketTypeKeyServerPrefs          SubpacketType = 23
	SubpacketTypePrefKeyServer           SubpacketType = 24
	SubpacketTypePrimaryUserId           SubpacketType = 25
	SubpacketTypePolicyURI               SubpacketType = 26
	SubpacketTypeKeyFlags                SubpacketType = 27
	SubpacketTypeSignerUserId            SubpacketType = 28
	SubpacketTypeReasonForRevocation     SubpacketType = 29
	SubpacketTypeFeatures                SubpacketType = 30
	SubpacketTypeSignatureTarget         SubpacketType = 31
	SubpacketTypeEmbeddedSignature       SubpacketType = 32
	SubpacketTypeIssuerFingerprint       SubpacketType = 33
	SubpacketTypePrefAEADAlgos           SubpacketType = 34

	subpacketTypeExperimentalMin SubpacketType = 100
	subpacketTypeExperimentalMax SubpacketType = 110
)

// Subpacket is one typed field of a signature's hashed or unhashed
// subpacket area. The concrete type is one of the subpacket structs in
// this package; unknown type tags are retained verbatim as
// *ExperimentalSubpacket or *UnknownSubpacket rather than rejected.
type Subpacket interface {
	// Type returns the wire type tag the subpacket is encoded with.
	Type() SubpacketType
}

// SignatureCreationTime is the time the signature was made. See RFC
// 4880, section 5.2.3.4.
type SignatureCreationTime struct {
	Time time.Time
}

func (*SignatureCreationTime) Type() SubpacketType { return SubpacketTypeCreationTime }

// SignatureExpirationTime is the expiration time of the signature. See
// RFC 4880, section 5.2.3.10.
type SignatureExpirationTime struct {
	Time time.Time
}

func (*SignatureExpirationTime) Type() SubpacketType { return SubpacketTypeSigExpiration }

// ExportableCertification denotes whether the signature is exportable.
// See RFC 4880, section 5.2.3.11.
type ExportableCertification struct {
	Exportable bool
}

func (*ExportableCertification) Type() SubpacketType { return SubpacketTypeExportableCertification }

// TrustSignature carries the trust depth and amount of a trust
// signature. The pairing is not validated. See RFC 4880, section
// 5.2.3.13.
type TrustSignature struct {
	Depth uint8
	Value uint8
}

func (*TrustSignature) Type() SubpacketType { return SubpacketTypeTrustSignature }

// RegularExpression limits the scope of a trust signature. See RFC 4880,
// section 5.2.3.14.
type RegularExpression struct {
	Expression string
}

func (*RegularExpression) Type() SubpacketType { return SubpacketTypeRegularExpression }

// Revocable denotes whether the signature may be revoked. See RFC 4880,
// section 5.2.3.12.
type Revocable struct {
	Revocable bool
}

func (*Revocable) Type() SubpacketType { return SubpacketTypeRevocable }

// KeyExpirationTime is the expiration time of the signed key. See RFC
// 4880, section 5.2.3.6.
type KeyExpirationTime struct {
	Time time.Time
}

func (*KeyExpirationTime) Type() SubpacketType { return SubpacketTypeKeyExpiration }

// PreferredSymmetricAlgorithms lists the key holder's cipher
// preferences. Every listed code must be a known cipher. See RFC 4880,
// section 5.2.3.7.
type PreferredSymmetricAlgorithms struct {
	Algorithms []CipherFunction
}

func (*PreferredSymmetricAlgorithms) Type() SubpacketType { return SubpacketTypePrefSymmetricAlgos }

// RevocationKey designates a key authorized to revoke the signed key.
// See RFC 4880, section 5.2.3.15.
type RevocationKey struct {
	Class       RevocationKeyClass
	Algorithm   PublicKeyAlgorithm
	Fingerprint []byte
}

func (*RevocationKey) Type() SubpacketType { return SubpacketTypeRevocationKey }

// Issuer is the eight-octet key ID of the signing key. See RFC 4880,
// section 5.2.3.5.
type Issuer struct {
	KeyId uint64
}

func (*Issuer) Type() SubpacketType { return SubpacketTypeIssuer }

// PreferredHashAlgorithms lists the key holder's hash preferences. Every
// listed code must be a known hash. See RFC 4880, section 5.2.3.8.
type PreferredHashAlgorithms struct {
	Algorithms []HashAlgorithm
}

func (*PreferredHashAlgorithms) Type() SubpacketType { return SubpacketTypePrefHashAlgos }

// PreferredCompressionAlgorithms lists the key holder's compression
// preferences. See RFC 4880, section 5.2.3.9.
type PreferredCompressionAlgorithms struct {
	Algorithms []CompressionAlgo
}

func (*PreferredCompressionAlgorithms) Type() SubpacketType { return SubpacketTypePrefCompression }

// KeyServerPreferences is a bitmask of key server preferences, retained
// without validation. See RFC 4880, section 5.2.3.17.
type KeyServerPreferences struct {
	Flags []byte
}

func (*KeyServerPreferences) Type() SubpacketType { return SubpacketTypeKeyServerPrefs }

// PreferredKeyServer is the URI of the key holder's preferred key
// server. See RFC 4880, section 5.2.3.18.
type PreferredKeyServer struct {
	URI string
}

func (*PreferredKeyServer) Type() SubpacketType { return SubpacketTypePrefKeyServer }

// PrimaryUserId marks the certified user ID as the primary one. See RFC
// 4880, section 5.2.3.19.
type PrimaryUserId struct {
	IsPrimary bool
}

func (*PrimaryUserId) Type() SubpacketType { return SubpacketTypePrimaryUserId }

// PolicyURI points to the policy the signature was issued under. See RFC
// 4880, section 5.2.3.20.
type PolicyURI struct {
	URI string
}

func (*PolicyURI) Type() SubpacketType { return SubpacketTypePolicyURI }

// KeyFlags is a bitmask of key capabilities, retained without
// validation. See RFC 4880, section 5.2.3.21.
type KeyFlags struct {
	Flags []byte
}

func (*KeyFlags) Type() SubpacketType { return SubpacketTypeKeyFlags }

// SignerUserId identifies the user ID responsible for the signature. See
// RFC 4880, section 5.2.3.22.
type SignerUserId struct {
	UserId string
}

func (*SignerUserId) Type() SubpacketType { return SubpacketTypeSignerUserId }

// ReasonForRevocationSubpacket carries the machine-readable reason code
// and the human-readable reason of a revocation. See RFC 4880, section
// 5.2.3.23.
type ReasonForRevocationSubpacket struct {
	Code   ReasonForRevocation
	Reason string
}

func (*ReasonForRevocationSubpacket) Type() SubpacketType { return SubpacketTypeReasonForRevocation }

// Features is a bitmask of implementation features, retained without
// validation. See RFC 4880, section 5.2.3.24.
type Features struct {
	Flags []byte
}

func (*Features) Type() SubpacketType { return SubpacketTypeFeatures }

// SignatureTarget identifies the signature this signature refers to. The
// digest is retained opaquely. See RFC 4880, section 5.2.3.25.
type SignatureTarget struct {
	PubKeyAlgo PublicKeyAlgorithm
	Hash       HashAlgorithm
	Digest     []byte
}

func (*SignatureTarget) Type() SubpacketType { return SubpacketTypeSignatureTarget }

// EmbeddedSignature holds a complete signature parsed from the subpacket
// body. See RFC 4880, section 5.2.3.26.
type EmbeddedSignature struct {
	Signature *Signature
}

func (*EmbeddedSignature) Type() SubpacketType { return SubpacketTypeEmbeddedSignature }

// IssuerFingerprint is the key version and full fingerprint of the
// signing key. The fingerprint length depends on the key version and is
// not enforced here. See RFC 4880bis, section 5.2.3.28.
type IssuerFingerprint struct {
	KeyVersion  KeyVersion
	Fingerprint []byte
}

func (*IssuerFingerprint) Type() SubpacketType { return SubpacketTypeIssuerFingerprint }

// PreferredAEADAlgorithms lists the key holder's AEAD mode preferences.
// Every listed code must be a known mode. See RFC 4880bis, section
// 5.2.3.8.
type PreferredAEADAlgorithms struct {
	Algorithms []AEADMode
}

func (*PreferredAEADAlgorithms) Type() SubpacketType { return SubpacketTypePrefAEADAlgos }

// ExperimentalSubpacket retains a subpacket from the experimental tag
// range (100 to 110) verbatim.
type ExperimentalSubpacket struct {
	Tag  uint8
	Data []byte
}

func (s *ExperimentalSubpacket) Type() SubpacketType { return SubpacketType(s.Tag) }

// UnknownSubpacket retains a subpacket with an unrecognized type tag
// verbatim. Unknown tags must never abort parsing; they may belong to a
// future revision of the message format.
type UnknownSubpacket struct {
	Tag  uint8
	Data []byte
}

func (s *UnknownSubpacket) Type() SubpacketType { return SubpacketType(s.Tag) }

// parseSubpackets walks a fully materialized subpacket area, handing
// each length-delimited body to the grammar of its type tag. The area's
// size was declared by the enclosing signature, so running out of bytes
// here is structural damage, never an incomplete read. A single
// malformed subpacket aborts the walk; there is no skip-and-continue.
func parseSubpackets(area []byte, depth int) ([]Subpacket, error) {
	var subpackets []Subpacket
	for len(area) > 0 {
		length, n, err := readSubpacketLength(area)
		if err != nil {
			return nil, err
		}
		area = area[n:]
		if length == 0 {
			return nil, errors.StructuralError("zero length signature subpacket")
		}
		if uint32(len(area)) < length {
			return nil, errors.StructuralError("signature subpacket truncated")
		}
		typ := SubpacketType(area[0])
		body := area[1:length]
		area = area[length:]

		subpacket, err := parseSubpacketBody(typ, body, depth)
		if err != nil {
			logrus.Warnf("openpgp: invalid subpacket %d: %v", typ, err)
			return nil, err
		}
		subpackets = append(subpackets, subpacket)
	}
	return subpackets, nil
}

// parseSubpacketBody is the grammar table: one pure rule per subpacket
// kind, consuming the already-sliced body. Rules read a prefix of the
// body and ignore any trailing bytes, matching the wire grammar.
func parseSubpacketBody(typ SubpacketType, body []byte, depth int) (Subpacket, error) {
	logrus.Debugf("openpgp: parsing subpacket %d: %x", typ, body)

	switch typ {
	case SubpacketTypeCreationTime:
		t, err := parseTime(body)
		if err != nil {
			return nil, err
		}
		return &SignatureCreationTime{Time: t}, nil
	case SubpacketTypeSigExpiration:
		t, err := parseTime(body)
		if err != nil {
			return nil, err
		}
		return &SignatureExpirationTime{Time: t}, nil
	case SubpacketTypeExportableCertification:
		v, err := parseFlagByte(body)
		if err != nil {
			return nil, err
		}
		return &ExportableCertification{Exportable: v}, nil
	case SubpacketTypeTrustSignature:
		if len(body) < 2 {
			return nil, errors.StructuralError("trust signature subpacket too short")
		}
		return &TrustSignature{Depth: body[0], Value: body[1]}, nil
	case SubpacketTypeRegularExpression:
		return &RegularExpression{Expression: string(body)}, nil
	case SubpacketTypeRevocable:
		v, err := parseFlagByte(body)
		if err != nil {
			return nil, err
		}
		return &Revocable{Revocable: v}, nil
	case SubpacketTypeKeyExpiration:
		t, err := parseTime(body)
		if err != nil {
			return nil, err
		}
		return &KeyExpirationTime{Time: t}, nil
	case SubpacketTypePrefSymmetricAlgos:
		list := make([]CipherFunction, 0, len(body))
		for _, b := range body {
			c, ok := cipherFunctionFromByte(b)
			if !ok {
				return nil, errors.UnsupportedError("symmetric algorithm " + strconv.Itoa(int(b)))
			}
			list = append(list, c)
		}
		return &PreferredSymmetricAlgorithms{Algorithms: list}, nil
	case SubpacketTypeRevocationKey:
		return parseRevocationKey(body)
	case SubpacketTypeIssuer:
		if len(body) < 8 {
			return nil, errors.StructuralError("issuer subpacket too short")
		}
		return &Issuer{KeyId: binary.BigEndian.Uint64(body[:8])}, nil
	case SubpacketTypeNotationData:
		return parseNotation(body)
	case SubpacketTypePrefHashAlgos:
		list := make([]HashAlgorithm, 0, len(body))
		for _, b := range body {
			h, ok := hashAlgorithmFromByte(b)
			if !ok {
				return nil, errors.UnsupportedError("hash algorithm " + strconv.Itoa(int(b)))
			}
			list = append(list, h)
		}
		return &PreferredHashAlgorithms{Algorithms: list}, nil
	case SubpacketTypePrefCompression:
		list := make([]CompressionAlgo, 0, len(body))
		for _, b := range body {
			c, ok := compressionAlgoFromByte(b)
			if !ok {
				return nil, errors.UnsupportedError("compression algorithm " + strconv.Itoa(int(b)))
			}
			list = append(list, c)
		}
		return &PreferredCompressionAlgorithms{Algorithms: list}, nil
	case SubpacketTypeKeyServerPrefs:
		return &KeyServerPreferences{Flags: append([]byte(nil), body...)}, nil
	case SubpacketTypePrefKeyServer:
		if !utf8.Valid(body) {
			return nil, errors.StructuralError("invalid UTF-8 in preferred key server subpacket")
		}
		return &PreferredKeyServer{URI: string(body)}, nil
	case SubpacketTypePrimaryUserId:
		v, err := parseFlagByte(body)
		if err != nil {
			return nil, err
		}
		return &PrimaryUserId{IsPrimary: v}, nil
	case SubpacketTypePolicyURI:
		return &PolicyURI{URI: string(body)}, nil
	case SubpacketTypeKeyFlags:
		return &KeyFlags{Flags: append([]byte(nil), body...)}, nil
	case SubpacketTypeSignerUserId:
		if !utf8.Valid(body) {
			return nil, errors.StructuralError("invalid UTF-8 in signer user ID subpacket")
		}
		return &SignerUserId{UserId: string(body)}, nil
	case SubpacketTypeReasonForRevocation:
		if len(body) < 1 {
			return nil, errors.StructuralError("empty revocation reason subpacket")
		}
		code, ok := reasonForRevocationFromByte(body[0])
		if !ok {
			return nil, errors.UnsupportedError("revocation reason " + strconv.Itoa(int(body[0])))
		}
		return &ReasonForRevocationSubpacket{Code: code, Reason: string(body[1:])}, nil
	case SubpacketTypeFeatures:
		return &Features{Flags: append([]byte(nil), body...)}, nil
	case SubpacketTypeSignatureTarget:
		if len(body) < 2 {
			return nil, errors.StructuralError("signature target subpacket too short")
		}
		pubKeyAlgo, ok := publicKeyAlgorithmFromByte(body[0])
		if !ok {
			return nil, errors.UnsupportedError("public key algorithm " + strconv.Itoa(int(body[0])))
		}
		hash, ok := hashAlgorithmFromByte(body[1])
		if !ok {
			return nil, errors.UnsupportedError("hash algorithm " + strconv.Itoa(int(body[1])))
		}
		return &SignatureTarget{
			PubKeyAlgo: pubKeyAlgo,
			Hash:       hash,
			Digest:     append([]byte(nil), body[2:]...),
		}, nil
	case SubpacketTypeEmbeddedSignature:
		return parseEmbeddedSignature(body, depth)
	case SubpacketTypeIssuerFingerprint:
		if len(body) < 1 {
			return nil, errors.StructuralError("empty issuer fingerprint subpacket")
		}
		version, ok := keyVersionFromByte(body[0])
		if !ok {
			return nil, errors.UnsupportedError("key version " + strconv.Itoa(int(body[0])))
		}
		return &IssuerFingerprint{
			KeyVersion:  version,
			Fingerprint: append([]byte(nil), body[1:]...),
		}, nil
	case SubpacketTypePrefAEADAlgos:
		list := make([]AEADMode, 0, len(body))
		for _, b := range body {
			m, ok := aeadModeFromByte(b)
			if !ok {
				return nil, errors.UnsupportedError("AEAD algorithm " + strconv.Itoa(int(b)))
			}
			list = append(list, m)
		}
		return &PreferredAEADAlgorithms{Algorithms: list}, nil
	}

	if typ >= subpacketTypeExperimentalMin && typ <= subpacketTypeExperimentalMax {
		return &ExperimentalSubpacket{Tag: uint8(typ), Data: append([]byte(nil), body...)}, nil
	}
	return &UnknownSubpacket{Tag: uint8(typ), Data: append([]byte(nil), body...)}, nil
}

// parseTime decodes a four-octet big-endian count of seconds since the
// Unix epoch.
func parseTime(body []byte) (time.Time, error) {
	if len(body) < 4 {
		return time.Time{}, errors.StructuralError("time subpacket too short")
	}
	return time.Unix(int64(binary.BigEndian.Uint32(body[:4])), 0), nil
}

// parseFlagByte maps a one-octet flag to a boolean by equality with 1.
func parseFlagByte(body []byte) (bool, error) {
	if len(body) < 1 {
		return false, errors.StructuralError("empty flag subpacket")
	}
	return body[0] == 1, nil
}

// revocationKeyFingerprintLen is the fingerprint width of a v4 key. A v5
// key carries a 32-octet fingerprint; the subpacket body has no key
// version field to branch on, so other widths are rejected instead of
// silently truncated.
const revocationKeyFingerprintLen = 20

func parseRevocationKey(body []byte) (Subpacket, error) {
	if len(body) < 2 {
		return nil, errors.StructuralError("revocation key subpacket too short")
	}
	class, ok := revocationKeyClassFromByte(body[0])
	if !ok {
		return nil, errors.UnsupportedError("revocation key class " + strconv.Itoa(int(body[0])))
	}
	algo, ok := publicKeyAlgorithmFromByte(body[1])
	if !ok {
		return nil, errors.UnsupportedError("public key algorithm " + strconv.Itoa(int(body[1])))
	}
	if len(body) != 2+revocationKeyFingerprintLen {
		return nil, errors.UnsupportedError("revocation key fingerprint length " + strconv.Itoa(len(body)-2))
	}
	return &RevocationKey{
		Class:       class,
		Algorithm:   algo,
		Fingerprint: append([]byte(nil), body[2:]...),
	}, nil
}

// serializeSubpackets appends the wire encoding of the given subpackets
// to buf.
func serializeSubpackets(buf []byte, subpackets []Subpacket) ([]byte, error) {
	for _, subpacket := range subpackets {
		body, err := subpacketBody(subpacket)
		if err != nil {
			return nil, err
		}
		buf = encodeSubpacketLength(buf, len(body)+1)
		buf = append(buf, byte(subpacket.Type()))
		buf = append(buf, body...)
	}
	return buf, nil
}

// subpacketBody encodes the body of a single subpacket, the inverse of
// parseSubpacketBody.
func subpacketBody(subpacket Subpacket) ([]byte, error) {
	switch s := subpacket.(type) {
	case *SignatureCreationTime:
		return encodeTime(s.Time), nil
	case *SignatureExpirationTime:
		return encodeTime(s.Time), nil
	case *ExportableCertification:
		return []byte{encodeFlagByte(s.Exportable)}, nil
	case *TrustSignature:
		return []byte{s.Depth, s.Value}, nil
	case *RegularExpression:
		return []byte(s.Expression), nil
	case *Revocable:
		return []byte{encodeFlagByte(s.Revocable)}, nil
	case *KeyExpirationTime:
		return encodeTime(s.Time), nil
	case *PreferredSymmetricAlgorithms:
		body := make([]byte, 0, len(s.Algorithms))
		for _, a := range s.Algorithms {
			body = append(body, byte(a))
		}
		return body, nil
	case *RevocationKey:
		if len(s.Fingerprint) != revocationKeyFingerprintLen {
			return nil, errors.InvalidArgumentError("revocation key fingerprint length " + strconv.Itoa(len(s.Fingerprint)))
		}
		body := []byte{byte(s.Class), byte(s.Algorithm)}
		return append(body, s.Fingerprint...), nil
	case *Issuer:
		body := make([]byte, 8)
		binary.BigEndian.PutUint64(body, s.KeyId)
		return body, nil
	case *Notation:
		return s.getData()
	case *PreferredHashAlgorithms:
		body := make([]byte, 0, len(s.Algorithms))
		for _, a := range s.Algorithms {
			body = append(body, byte(a))
		}
		return body, nil
	case *PreferredCompressionAlgorithms:
		body := make([]byte, 0, len(s.Algorithms))
		for _, a := range s.Algorithms {
			body = append(body, byte(a))
		}
		return body, nil
	case *KeyServerPreferences:
		return s.Flags, nil
	case *PreferredKeyServer:
		return []byte(s.URI), nil
	case *PrimaryUserId:
		return []byte{encodeFlagByte(s.IsPrimary)}, nil
	case *PolicyURI:
		return []byte(s.URI), nil
	case *KeyFlags:
		return s.Flags, nil
	case *SignerUserId:
		return []byte(s.UserId), nil
	case *ReasonForRevocationSubpacket:
		return append([]byte{byte(s.Code)}, s.Reason...), nil
	case *Features:
		return s.Flags, nil
	case *SignatureTarget:
		body := []byte{byte(s.PubKeyAlgo), byte(s.Hash)}
		return append(body, s.Digest...), nil
	case *EmbeddedSignature:
		return s.Signature.bodyBytes()
	case *IssuerFingerprint:
		return append([]byte{byte(s.KeyVersion)}, s.Fingerprint...), nil
	case *PreferredAEADAlgorithms:
		body := make([]byte, 0, len(s.Algorithms))
		for _, a := range s.Algorithms {
			body = append(body, byte(a))
		}
		return body, nil
	case *ExperimentalSubpacket:
		return s.Data, nil
	case *UnknownSubpacket:
		return s.Data, nil
	}
	return nil, errors.InvalidArgumentError("unserializable subpacket")
}

func encodeTime(t time.Time) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, uint32(t.Unix()))
	return body
}

func encodeFlagByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
