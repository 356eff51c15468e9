// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/messages.go
// Summary: Payload codecs for the non-frame messages of a binary presentation.

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	errStringTooLong = errors.New("protocol: string exceeds 64KB limit")
	errPayloadShort  = errors.New("protocol: payload too short")
	errExtraBytes    = errors.New("protocol: payload has trailing data")
)

// ContractInfo opens a binary presentation.
type ContractInfo struct {
	Contract    TerminalContract
	FrameCount  uint32
	MarkerCount uint32
}

func encodeString(buf *bytes.Buffer, value string) error {
	if len(value) > 0xFFFF {
		return errStringTooLong
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(value))); err != nil {
		return err
	}
	if len(value) > 0 {
		if _, err := buf.WriteString(value); err != nil {
			return err
		}
	}
	return nil
}

func decodeString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, errPayloadShort
	}
	length := binary.LittleEndian.Uint16(b[:2])
	b = b[2:]
	if len(b) < int(length) {
		return "", nil, errPayloadShort
	}
	return string(b[:length]), b[length:], nil
}

func EncodeContract(c ContractInfo) ([]byte, error) {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint16(buf[0:2], c.Contract.Width)
	binary.LittleEndian.PutUint16(buf[2:4], c.Contract.Height)
	binary.LittleEndian.PutUint32(buf[4:8], c.FrameCount)
	binary.LittleEndian.PutUint32(buf[8:12], c.MarkerCount)
	return buf, nil
}

func DecodeContract(b []byte) (ContractInfo, error) {
	var c ContractInfo
	if len(b) < 12 {
		return c, errPayloadShort
	}
	if len(b) > 12 {
		return c, errExtraBytes
	}
	c.Contract.Width = binary.LittleEndian.Uint16(b[0:2])
	c.Contract.Height = binary.LittleEndian.Uint16(b[2:4])
	c.FrameCount = binary.LittleEndian.Uint32(b[4:8])
	c.MarkerCount = binary.LittleEndian.Uint32(b[8:12])
	return c, nil
}

func EncodeMarker(m Marker) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 6+len(m.Label)))
	if err := binary.Write(buf, binary.LittleEndian, uint32(m.FrameIndex)); err != nil {
		return nil, err
	}
	if err := encodeString(buf, m.Label); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeMarker(b []byte) (Marker, error) {
	var m Marker
	if len(b) < 4 {
		return m, errPayloadShort
	}
	m.FrameIndex = int(binary.LittleEndian.Uint32(b[:4]))
	label, rest, err := decodeString(b[4:])
	if err != nil {
		return m, err
	}
	if len(rest) != 0 {
		return m, errExtraBytes
	}
	m.Label = label
	return m, nil
}
