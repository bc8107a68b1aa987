// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

// SignatureType represents the different semantic meanings of an OpenPGP
// signature. See RFC 4880, section 5.2.1.
type SignatureType uint8

const (
	SigTypeBinary        SignatureType = 0x00
	SigTypeText          SignatureType = 0x01
	SigTypeStandalone    SignatureType = 0x02
	SigTypeGenericCert   SignatureType = 0x10
	SigTypePersonaCert   SignatureType = 0x11
	SigTypeCasualCert    SignatureType = 0x12
	SigTypePositiveCert  SignatureType = 0x13
	SigTypeSubkeyBinding SignatureType = 0x18
	SigTypePrimaryKeyBinding SignatureType = 0x19
	SigTypeDirectSignature   SignatureType = 0x1F
	SigTypeKeyRevocation     SignatureType = 0x20
	SigTypeSubkeyRevocation  SignatureType = 0x28
	SigTypeCertRevocation    SignatureType = 0x30
	SigTypeTimestamp         SignatureType = 0x40
	SigTypeThirdParty        SignatureType = 0x50
)

func signatureTypeFromByte(b byte) (SignatureType, bool) {
	switch t := SignatureType(b); t {
	case SigTypeBinary, SigTypeText, SigTypeStandalone,
		SigTypeGenericCert, SigTypePersonaCert, SigTypeCasualCert, SigTypePositiveCert,
		SigTypeSubkeyBinding, SigTypePrimaryKeyBinding, SigTypeDirectSignature,
		SigTypeKeyRevocation, SigTypeSubkeyRevocation, SigTypeCertRevocation,
		SigTypeTimestamp, SigTypeThirdParty:
		return t, true
	}
	return 0, false
}

// PublicKeyAlgorithm represents the different public key system specified
// for OpenPGP. See RFC 4880, section 9.1.
type PublicKeyAlgorithm uint8

const (
	PubKeyAlgoRSA            PublicKeyAlgorithm = 1
	PubKeyAlgoRSAEncryptOnly PublicKeyAlgorithm = 2
	PubKeyAlgoRSASignOnly    PublicKeyAlgorithm = 3
	PubKeyAlgoElGamalEncrypt PublicKeyAlgorithm = 16
	PubKeyAlgoDSA            PublicKeyAlgorithm = 17
	PubKeyAlgoECDH           PublicKeyAlgorithm = 18
	PubKeyAlgoECDSA          PublicKeyAlgorithm = 19
	PubKeyAlgoElGamal        PublicKeyAlgorithm = 20
	PubKeyAlgoDH             PublicKeyAlgorithm = 21
	PubKeyAlgoEdDSA          PublicKeyAlgorithm = 22

	// Experimental and private algorithms occupy 100 to 110 inclusive.
	pubKeyAlgoPrivateMin PublicKeyAlgorithm = 100
	pubKeyAlgoPrivateMax PublicKeyAlgorithm = 110
)

func publicKeyAlgorithmFromByte(b byte) (PublicKeyAlgorithm, bool) {
	switch a := PublicKeyAlgorithm(b); a {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly,
		PubKeyAlgoElGamalEncrypt, PubKeyAlgoDSA, PubKeyAlgoECDH, PubKeyAlgoECDSA,
		PubKeyAlgoElGamal, PubKeyAlgoDH, PubKeyAlgoEdDSA:
		return a, true
	default:
		if a >= pubKeyAlgoPrivateMin && a <= pubKeyAlgoPrivateMax {
			return a, true
		}
	}
	return 0, false
}

// HashAlgorithm represents the different hash functions specified for
// OpenPGP. See RFC 4880, section 9.4.
type HashAlgorithm uint8

const (
	HashMD5       HashAlgorithm = 1
	HashSHA1      HashAlgorithm = 2
	HashRIPEMD160 HashAlgorithm = 3
	HashSHA256    HashAlgorithm = 8
	HashSHA384    HashAlgorithm = 9
	HashSHA512    HashAlgorithm = 10
	HashSHA224    HashAlgorithm = 11
	HashSHA3_256  HashAlgorithm = 12
	HashSHA3_512  HashAlgorithm = 14
)

func hashAlgorithmFromByte(b byte) (HashAlgorithm, bool) {
	switch h := HashAlgorithm(b); h {
	case HashMD5, HashSHA1, HashRIPEMD160, HashSHA256, HashSHA384,
		HashSHA512, HashSHA224, HashSHA3_256, HashSHA3_512:
		return h, true
	}
	return 0, false
}

// CipherFunction represents the different symmetric algorithms specified
// for OpenPGP. See RFC 4880, section 9.2.
type CipherFunction uint8

const (
	CipherPlaintext   CipherFunction = 0
	CipherIDEA        CipherFunction = 1
	Cipher3DES        CipherFunction = 2
	CipherCAST5       CipherFunction = 3
	CipherBlowfish    CipherFunction = 4
	CipherAES128      CipherFunction = 7
	CipherAES192      CipherFunction = 8
	CipherAES256      CipherFunction = 9
	CipherTwofish     CipherFunction = 10
	CipherCamellia128 CipherFunction = 11
	CipherCamellia192 CipherFunction = 12
	CipherCamellia256 CipherFunction = 13
)

func cipherFunctionFromByte(b byte) (CipherFunction, bool) {
	switch c := CipherFunction(b); c {
	case CipherPlaintext, CipherIDEA, Cipher3DES, CipherCAST5, CipherBlowfish,
		CipherAES128, CipherAES192, CipherAES256, CipherTwofish,
		CipherCamellia128, CipherCamellia192, CipherCamellia256:
		return c, true
	}
	return 0, false
}

// CompressionAlgo represents the different compression algorithms
// specified for OpenPGP. See RFC 4880, section 9.3.
type CompressionAlgo uint8

const (
	CompressionNone  CompressionAlgo = 0
	CompressionZIP   CompressionAlgo = 1
	CompressionZLIB  CompressionAlgo = 2
	CompressionBZip2 CompressionAlgo = 3
)

func compressionAlgoFromByte(b byte) (CompressionAlgo, bool) {
	switch c := CompressionAlgo(b); c {
	case CompressionNone, CompressionZIP, CompressionZLIB, CompressionBZip2:
		return c, true
	}
	return 0, false
}

// AEADMode represents the different AEAD modes of operation specified
// for OpenPGP. See RFC 4880bis [EAX] and RFC 7253.
type AEADMode uint8

const (
	AEADModeEAX AEADMode = 1
	AEADModeOCB AEADMode = 2
	AEADModeGCM AEADMode = 3
)

func aeadModeFromByte(b byte) (AEADMode, bool) {
	switch m := AEADMode(b); m {
	case AEADModeEAX, AEADModeOCB, AEADModeGCM:
		return m, true
	}
	return 0, false
}

// RevocationKeyClass is the class octet of a revocation key subpacket.
// Bit 0x80 must be set; bit 0x40 marks the relationship as sensitive.
type RevocationKeyClass uint8

const (
	RevocationClassDefault   RevocationKeyClass = 0x80
	RevocationClassSensitive RevocationKeyClass = 0x80 | 0x40
)

func revocationKeyClassFromByte(b byte) (RevocationKeyClass, bool) {
	switch c := RevocationKeyClass(b); c {
	case RevocationClassDefault, RevocationClassSensitive:
		return c, true
	}
	return 0, false
}

// ReasonForRevocation represents a revocation reason code as per RFC
// 4880, section 5.2.3.23.
type ReasonForRevocation uint8

const (
	NoReason       ReasonForRevocation = 0
	KeySuperseded  ReasonForRevocation = 1
	KeyCompromised ReasonForRevocation = 2
	KeyRetired     ReasonForRevocation = 3
	UserIDNotValid ReasonForRevocation = 32
)

func reasonForRevocationFromByte(b byte) (ReasonForRevocation, bool) {
	switch r := ReasonForRevocation(b); r {
	case NoReason, KeySuperseded, KeyCompromised, KeyRetired, UserIDNotValid:
		return r, true
	}
	return 0, false
}

// KeyVersion is a public key packet version as carried in the issuer
// fingerprint subpacket.
type KeyVersion uint8

const (
	KeyVersionV2 KeyVersion = 2
	KeyVersionV3 KeyVersion = 3
	KeyVersionV4 KeyVersion = 4
	KeyVersionV5 KeyVersion = 5
)

func keyVersionFromByte(b byte) (KeyVersion, bool) {
	switch v := KeyVersion(b); v {
	case KeyVersionV2, KeyVersionV3, KeyVersionV4, KeyVersionV5:
		return v, true
	}
	return 0, false
}
