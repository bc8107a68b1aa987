package packet

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/openpgp-go/sigpacket/openpgp/errors"
	"github.com/openpgp-go/sigpacket/openpgp/internal/encoding"
)

var mpiComparer = cmp.Comparer(func(a, b *encoding.MPI) bool {
	return a.BitLength() == b.BitLength() && bytes.Equal(a.Bytes(), b.Bytes())
})

func TestTrustSignatureSubpacket(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypeTrustSignature, []byte{3, 120}, 0)
	if err != nil {
		t.Fatal(err)
	}
	trust, ok := subpacket.(*TrustSignature)
	if !ok {
		t.Fatalf("wrong subpacket type %T", subpacket)
	}
	assert.Equal(t, uint8(3), trust.Depth)
	assert.Equal(t, uint8(120), trust.Value)
}

func TestFlagByteSubpackets(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypeExportableCertification, []byte{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, subpacket.(*ExportableCertification).Exportable)

	subpacket, err = parseSubpacketBody(SubpacketTypeRevocable, []byte{0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, subpacket.(*Revocable).Revocable)

	// any octet other than 1 means false
	subpacket, err = parseSubpacketBody(SubpacketTypePrimaryUserId, []byte{2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, subpacket.(*PrimaryUserId).IsPrimary)

	if _, err = parseSubpacketBody(SubpacketTypeRevocable, []byte{}, 0); err == nil {
		t.Error("empty flag subpacket parsed")
	}
}

func TestTimeSubpackets(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypeCreationTime, []byte{0x5d, 0xe6, 0x2d, 0x55}, 0)
	if err != nil {
		t.Fatal(err)
	}
	creation := subpacket.(*SignatureCreationTime)
	if !creation.Time.Equal(time.Unix(0x5de62d55, 0)) {
		t.Errorf("wrong creation time %v", creation.Time)
	}

	if _, err = parseSubpacketBody(SubpacketTypeKeyExpiration, []byte{0x00, 0x01}, 0); err == nil {
		t.Error("truncated time subpacket parsed")
	}
}

func TestPreferredAlgorithmsSubpackets(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypePrefSymmetricAlgos, []byte{9, 8, 7, 3, 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []CipherFunction{CipherAES256, CipherAES192, CipherAES128, CipherCAST5, Cipher3DES},
		subpacket.(*PreferredSymmetricAlgorithms).Algorithms)

	subpacket, err = parseSubpacketBody(SubpacketTypePrefHashAlgos, []byte{8, 9, 10}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []HashAlgorithm{HashSHA256, HashSHA384, HashSHA512},
		subpacket.(*PreferredHashAlgorithms).Algorithms)

	subpacket, err = parseSubpacketBody(SubpacketTypePrefAEADAlgos, []byte{2, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []AEADMode{AEADModeOCB, AEADModeEAX},
		subpacket.(*PreferredAEADAlgorithms).Algorithms)

	// one unknown code fails the whole subpacket
	_, err = parseSubpacketBody(SubpacketTypePrefHashAlgos, []byte{8, 253}, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("got %v, want UnsupportedError", err)
	}
	_, err = parseSubpacketBody(SubpacketTypePrefCompression, []byte{1, 99}, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("got %v, want UnsupportedError", err)
	}
}

func TestBitmaskSubpacketsKeepRawBytes(t *testing.T) {
	// flag bitmasks are not enumerations: arbitrary bytes are retained
	for _, typ := range []SubpacketType{SubpacketTypeKeyServerPrefs, SubpacketTypeKeyFlags, SubpacketTypeFeatures} {
		subpacket, err := parseSubpacketBody(typ, []byte{0xde, 0xad}, 0)
		if err != nil {
			t.Fatalf("subpacket %d: %v", typ, err)
		}
		var flags []byte
		switch s := subpacket.(type) {
		case *KeyServerPreferences:
			flags = s.Flags
		case *KeyFlags:
			flags = s.Flags
		case *Features:
			flags = s.Flags
		}
		assert.Equal(t, []byte{0xde, 0xad}, flags)
	}
}

func TestTextSubpackets(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypeSignerUserId, []byte("alice@example.com"), 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "alice@example.com", subpacket.(*SignerUserId).UserId)

	// invalid UTF-8 is fatal for signer user ID and preferred key server
	if _, err = parseSubpacketBody(SubpacketTypeSignerUserId, []byte{0xff, 0xfe}, 0); err == nil {
		t.Error("invalid UTF-8 signer user ID parsed")
	}
	if _, err = parseSubpacketBody(SubpacketTypePrefKeyServer, []byte{0xff, 0xfe}, 0); err == nil {
		t.Error("invalid UTF-8 preferred key server parsed")
	}

	// but not for regular expressions and policy URIs
	subpacket, err = parseSubpacketBody(SubpacketTypeRegularExpression, []byte{0xff, 0xfe}, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "\xff\xfe", subpacket.(*RegularExpression).Expression)
	if _, err = parseSubpacketBody(SubpacketTypePolicyURI, []byte{0xff, 0xfe}, 0); err != nil {
		t.Fatal(err)
	}
}

func TestNotationSubpacket(t *testing.T) {
	body := []byte{
		0x80, 0x00, 0x00, 0x00, // human-readable, reserved
		0x00, 0x04, // name length
		0x00, 0x05, // value length
		't', 'e', 's', 't',
		'v', 'a', 'l', 'u', 'e',
	}
	subpacket, err := parseSubpacketBody(SubpacketTypeNotationData, body, 0)
	if err != nil {
		t.Fatal(err)
	}
	notation := subpacket.(*Notation)
	assert.Equal(t, "test", notation.Name)
	assert.Equal(t, "value", notation.Value)
	assert.True(t, notation.HumanReadable)

	bad := append([]byte(nil), body...)
	bad[2] = 0x01
	if _, err = parseSubpacketBody(SubpacketTypeNotationData, bad, 0); err == nil {
		t.Error("non-zero reserved octets parsed")
	}

	short := body[:10]
	if _, err = parseSubpacketBody(SubpacketTypeNotationData, short, 0); err == nil {
		t.Error("notation shorter than declared name/value parsed")
	}
}

func TestRevocationKeySubpacket(t *testing.T) {
	fingerprint := bytes.Repeat([]byte{0xab}, 20)
	body := append([]byte{0x80, 0x01}, fingerprint...)
	subpacket, err := parseSubpacketBody(SubpacketTypeRevocationKey, body, 0)
	if err != nil {
		t.Fatal(err)
	}
	revocation := subpacket.(*RevocationKey)
	assert.Equal(t, RevocationClassDefault, revocation.Class)
	assert.Equal(t, PubKeyAlgoRSA, revocation.Algorithm)
	assert.Equal(t, fingerprint, revocation.Fingerprint)

	_, err = parseSubpacketBody(SubpacketTypeRevocationKey, append([]byte{0x01, 0x01}, fingerprint...), 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("bad class: got %v, want UnsupportedError", err)
	}

	// v5 keys carry 32-octet fingerprints; refuse rather than truncate
	long := append([]byte{0x80, 0x01}, bytes.Repeat([]byte{0xab}, 32)...)
	_, err = parseSubpacketBody(SubpacketTypeRevocationKey, long, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("32-octet fingerprint: got %v, want UnsupportedError", err)
	}
}

func TestRevocationReasonSubpacket(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketTypeReasonForRevocation, append([]byte{1}, "key rolled over"...), 0)
	if err != nil {
		t.Fatal(err)
	}
	reason := subpacket.(*ReasonForRevocationSubpacket)
	assert.Equal(t, KeySuperseded, reason.Code)
	assert.Equal(t, "key rolled over", reason.Reason)

	_, err = parseSubpacketBody(SubpacketTypeReasonForRevocation, []byte{99}, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("got %v, want UnsupportedError", err)
	}
}

func TestSignatureTargetSubpacket(t *testing.T) {
	digest := bytes.Repeat([]byte{0x42}, 32)
	subpacket, err := parseSubpacketBody(SubpacketTypeSignatureTarget, append([]byte{17, 8}, digest...), 0)
	if err != nil {
		t.Fatal(err)
	}
	target := subpacket.(*SignatureTarget)
	assert.Equal(t, PubKeyAlgoDSA, target.PubKeyAlgo)
	assert.Equal(t, HashSHA256, target.Hash)
	assert.Equal(t, digest, target.Digest)

	_, err = parseSubpacketBody(SubpacketTypeSignatureTarget, []byte{17, 253}, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("got %v, want UnsupportedError", err)
	}
}

func TestIssuerFingerprintSubpacket(t *testing.T) {
	fingerprint := bytes.Repeat([]byte{0xcd}, 32)
	subpacket, err := parseSubpacketBody(SubpacketTypeIssuerFingerprint, append([]byte{5}, fingerprint...), 0)
	if err != nil {
		t.Fatal(err)
	}
	issuer := subpacket.(*IssuerFingerprint)
	assert.Equal(t, KeyVersionV5, issuer.KeyVersion)
	// length depends on the key version and is not enforced here
	assert.Equal(t, fingerprint, issuer.Fingerprint)

	_, err = parseSubpacketBody(SubpacketTypeIssuerFingerprint, []byte{9, 0x01}, 0)
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Errorf("got %v, want UnsupportedError", err)
	}
}

func TestCatchAllSubpackets(t *testing.T) {
	subpacket, err := parseSubpacketBody(SubpacketType(105), []byte{0x01, 0x02}, 0)
	if err != nil {
		t.Fatal(err)
	}
	experimental := subpacket.(*ExperimentalSubpacket)
	assert.Equal(t, uint8(105), experimental.Tag)
	assert.Equal(t, []byte{0x01, 0x02}, experimental.Data)

	subpacket, err = parseSubpacketBody(SubpacketType(254), []byte{0xde, 0xad}, 0)
	if err != nil {
		t.Fatal(err)
	}
	unknown := subpacket.(*UnknownSubpacket)
	assert.Equal(t, uint8(254), unknown.Tag)
	assert.Equal(t, []byte{0xde, 0xad}, unknown.Data)
}

func TestSubpacketsRoundTrip(t *testing.T) {
	issuer := uint64(0x0102030405060708)
	subpackets := []Subpacket{
		&SignatureCreationTime{Time: time.Unix(0x5de62d55, 0)},
		&SignatureExpirationTime{Time: time.Unix(0x5ee62d55, 0)},
		&ExportableCertification{Exportable: true},
		&TrustSignature{Depth: 1, Value: 60},
		&RegularExpression{Expression: "<[^>]+[@.]example\\.com>$"},
		&Revocable{},
		&KeyExpirationTime{Time: time.Unix(0x60000000, 0)},
		&PreferredSymmetricAlgorithms{Algorithms: []CipherFunction{CipherAES256, CipherAES128}},
		&RevocationKey{Class: RevocationClassSensitive, Algorithm: PubKeyAlgoEdDSA, Fingerprint: bytes.Repeat([]byte{0x11}, 20)},
		&Issuer{KeyId: issuer},
		&Notation{Name: "test@example.com", Value: "yes", HumanReadable: true},
		&PreferredHashAlgorithms{Algorithms: []HashAlgorithm{HashSHA512, HashSHA256}},
		&PreferredCompressionAlgorithms{Algorithms: []CompressionAlgo{CompressionZLIB}},
		&KeyServerPreferences{Flags: []byte{0x80}},
		&PreferredKeyServer{URI: "hkps://keys.example.com"},
		&PrimaryUserId{IsPrimary: true},
		&PolicyURI{URI: "https://example.com/policy"},
		&KeyFlags{Flags: []byte{0x03}},
		&SignerUserId{UserId: "alice@example.com"},
		&ReasonForRevocationSubpacket{Code: KeyRetired, Reason: "retired"},
		&Features{Flags: []byte{0x01}},
		&SignatureTarget{PubKeyAlgo: PubKeyAlgoRSA, Hash: HashSHA256, Digest: bytes.Repeat([]byte{0x22}, 32)},
		&IssuerFingerprint{KeyVersion: KeyVersionV4, Fingerprint: bytes.Repeat([]byte{0x33}, 20)},
		&PreferredAEADAlgorithms{Algorithms: []AEADMode{AEADModeOCB}},
		&ExperimentalSubpacket{Tag: 100, Data: []byte{0xaa}},
		&UnknownSubpacket{Tag: 254, Data: []byte{0xbb, 0xcc}},
	}

	area, err := serializeSubpackets(nil, subpackets)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := parseSubpackets(area, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(subpackets, parsed, mpiComparer); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	reserialized, err := serializeSubpackets(nil, parsed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(area, reserialized) {
		t.Errorf("reserialization mismatch:\n%x\n%x", area, reserialized)
	}
}
