// Package wire implements the tunnel's on-the-wire Message encoding: a
// length-prefixed binary format for the three-variant Message sum type,
// sealed with a fixed-nonce AES-256-GCM AEAD and, for Data frames, Snappy
// compression of the inner IP payload.
//
// Grounded on original_source/src/network.rs (serde/bincode Message enum,
// PBKDF2 key derivation, AES-256-GCM with a zero nonce) and on the teacher's
// infrastructure/network/header.go framing style.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"gonet-tunnel/application"
)

// Kind tags which Message variant a frame carries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
	KindData
)

// Message is the tagged union carried by every UDP datagram once decrypted.
// Only the field group matching Kind is meaningful; a Request uses none.
type Message struct {
	Kind Kind

	// Response fields.
	ResponseId    application.Id
	ResponseToken application.Token
	ResponseDNS   string

	// Data fields.
	DataId    application.Id
	DataToken application.Token
	Data      []byte
}

// Request builds a Request message.
func Request() Message { return Message{Kind: KindRequest} }

// Response builds a Response message.
func Response(id application.Id, token application.Token, dns string) Message {
	return Message{Kind: KindResponse, ResponseId: id, ResponseToken: token, ResponseDNS: dns}
}

// Data builds a Data message. data is already compressed.
func Data(id application.Id, token application.Token, data []byte) Message {
	return Message{Kind: KindData, DataId: id, DataToken: token, Data: data}
}

var errTruncated = errors.New("wire: truncated message")

// Encode serializes m as: 1-byte kind discriminant, followed by fields in
// declaration order. Strings and byte slices are preceded by a 4-byte
// little-endian length.
func Encode(m Message) []byte {
	switch m.Kind {
	case KindRequest:
		return []byte{byte(KindRequest)}
	case KindResponse:
		buf := make([]byte, 0, 1+1+8+4+len(m.ResponseDNS))
		buf = append(buf, byte(KindResponse))
		buf = append(buf, m.ResponseId)
		buf = appendU64(buf, m.ResponseToken)
		buf = appendBytes(buf, []byte(m.ResponseDNS))
		return buf
	case KindData:
		buf := make([]byte, 0, 1+1+8+4+len(m.Data))
		buf = append(buf, byte(KindData))
		buf = append(buf, m.DataId)
		buf = appendU64(buf, m.DataToken)
		buf = appendBytes(buf, m.Data)
		return buf
	default:
		panic(fmt.Sprintf("wire: unknown message kind %d", m.Kind))
	}
}

// Decode parses a Message from its encoded form, as produced by Encode.
func Decode(b []byte) (Message, error) {
	if len(b) < 1 {
		return Message{}, errTruncated
	}
	switch Kind(b[0]) {
	case KindRequest:
		return Request(), nil
	case KindResponse:
		rest := b[1:]
		if len(rest) < 1+8 {
			return Message{}, errTruncated
		}
		id := rest[0]
		token := binary.LittleEndian.Uint64(rest[1:9])
		dns, _, err := readBytes(rest[9:])
		if err != nil {
			return Message{}, err
		}
		return Response(id, token, string(dns)), nil
	case KindData:
		rest := b[1:]
		if len(rest) < 1+8 {
			return Message{}, errTruncated
		}
		id := rest[0]
		token := binary.LittleEndian.Uint64(rest[1:9])
		data, _, err := readBytes(rest[9:])
		if err != nil {
			return Message{}, err
		}
		return Data(id, token, data), nil
	default:
		return Message{}, fmt.Errorf("wire: unknown message kind %d", b[0])
	}
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBytes(buf []byte, v []byte) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(v)))
	buf = append(buf, tmp[:]...)
	return append(buf, v...)
}

func readBytes(b []byte) (data []byte, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, errTruncated
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < n {
		return nil, nil, errTruncated
	}
	return b[:n], b[n:], nil
}
