package packet

import (
	"encoding/binary"

	"github.com/openpgp-go/sigpacket/openpgp/errors"
)

// Notation type represents a Notation Data subpacket
// see https://tools.ietf.org/html/rfc4880#section-5.2.3.16
type Notation struct {
	Name          string
	Value         string
	HumanReadable bool
}

func (not *Notation) Type() SubpacketType { return SubpacketTypeNotationData }

// parseNotation decodes a notation data subpacket body: one flag octet
// whose top bit marks the value as human-readable, three reserved zero
// octets, two-octet name and value lengths, then the name and value.
func parseNotation(body []byte) (Subpacket, error) {
	if len(body) < 8 {
		return nil, errors.StructuralError("notation data subpacket too short")
	}
	if body[1] != 0 || body[2] != 0 || body[3] != 0 {
		return nil, errors.StructuralError("non-zero reserved octets in notation data subpacket")
	}
	nameLen := int(binary.BigEndian.Uint16(body[4:6]))
	valueLen := int(binary.BigEndian.Uint16(body[6:8]))
	if len(body) < 8+nameLen+valueLen {
		return nil, errors.StructuralError("notation data subpacket shorter than its name and value lengths")
	}
	return &Notation{
		Name:          string(body[8 : 8+nameLen]),
		Value:         string(body[8+nameLen : 8+nameLen+valueLen]),
		HumanReadable: body[0]&0x80 == 0x80,
	}, nil
}

func (not *Notation) getData() ([]byte, error) {
	nameData := []byte(not.Name)
	valueData := []byte(not.Value)
	nameLen := len(nameData)
	valueLen := len(valueData)
	if nameLen > 0xffff {
		return nil, errors.InvalidArgumentError("notation name too long")
	}
	if valueLen > 0xffff {
		return nil, errors.InvalidArgumentError("notation value too long")
	}

	data := make([]byte, 8, 8+nameLen+valueLen)
	if not.HumanReadable {
		data[0] = 0x80
	}
	data[4] = byte(nameLen >> 8)
	data[5] = byte(nameLen)
	data[6] = byte(valueLen >> 8)
	data[7] = byte(valueLen)

	data = append(data, nameData...)
	return append(data, valueData...), nil
}
