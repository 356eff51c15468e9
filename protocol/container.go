// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/container.go
// Summary: Framed binary container for compiled presentations.
// Notes: One message per frame; frames carry FrameDelta payloads.

package protocol

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	magic      uint32 = 0x54585301 // "TXS\x01"
	headerSize        = 40
)

// Flag bits for the header Flags byte.
const (
	FlagChecksum uint8 = 0x01
)

// Version is the container version implemented by this package.
const Version uint8 = 0

// MessageType enumerates the records stored in a binary presentation.
type MessageType uint8

const (
	MsgContract MessageType = iota
	MsgFrame
	MsgMarker
	MsgEnd
)

// Header describes the fixed portion of every record.
type Header struct {
	Version    uint8
	Type       MessageType
	Flags      uint8
	Reserved   uint8
	DocumentID [16]byte
	Sequence   uint64
	PayloadLen uint32
	Checksum   uint32
}

var (
	ErrInvalidMagic     = errors.New("protocol: invalid magic")
	ErrUnsupportedVer   = errors.New("protocol: unsupported version")
	ErrShortPayload     = errors.New("protocol: payload shorter than declared length")
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrUnexpectedRecord = errors.New("protocol: unexpected record")
)

// WriteMessage serialises the header and payload to the provided writer. The
// payload slice is written as-is; callers retain ownership of the buffer.
func WriteMessage(w io.Writer, hdr Header, payload []byte) error {
	hdr.PayloadLen = uint32(len(payload))

	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], magic)
	buf[4] = hdr.Version
	buf[5] = byte(hdr.Type)
	buf[6] = hdr.Flags
	buf[7] = hdr.Reserved
	copy(buf[8:24], hdr.DocumentID[:])
	binary.LittleEndian.PutUint64(buf[24:32], hdr.Sequence)
	binary.LittleEndian.PutUint32(buf[32:36], hdr.PayloadLen)

	checksum := hdr.Checksum
	if hdr.Flags&FlagChecksum != 0 {
		crc := crc32.NewIEEE()
		_, _ = crc.Write(buf[4:36])
		if len(payload) > 0 {
			_, _ = crc.Write(payload)
		}
		checksum = crc.Sum32()
	}
	binary.LittleEndian.PutUint32(buf[36:40], checksum)

	if _, err := w.Write(buf); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadMessage reads a header and payload from r. The returned payload points to
// a freshly allocated slice sized to the declared payload length.
func ReadMessage(r io.Reader) (Header, []byte, error) {
	var hdr Header
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return hdr, nil, err
	}

	if binary.LittleEndian.Uint32(buf[0:4]) != magic {
		return hdr, nil, ErrInvalidMagic
	}

	hdr.Version = buf[4]
	hdr.Type = MessageType(buf[5])
	hdr.Flags = buf[6]
	hdr.Reserved = buf[7]
	copy(hdr.DocumentID[:], buf[8:24])
	hdr.Sequence = binary.LittleEndian.Uint64(buf[24:32])
	hdr.PayloadLen = binary.LittleEndian.Uint32(buf[32:36])
	hdr.Checksum = binary.LittleEndian.Uint32(buf[36:40])

	if hdr.Version != Version {
		return hdr, nil, ErrUnsupportedVer
	}

	payload := make([]byte, hdr.PayloadLen)
	if hdr.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return hdr, nil, ErrShortPayload
			}
			return hdr, nil, err
		}
	}

	if hdr.Flags&FlagChecksum != 0 {
		crc := crc32.NewIEEE()
		_, _ = crc.Write(buf[4:36])
		if len(payload) > 0 {
			_, _ = crc.Write(payload)
		}
		computed := crc.Sum32()
		if computed != hdr.Checksum {
			return hdr, nil, ErrChecksumMismatch
		}
	}

	return hdr, payload, nil
}

// DocumentID derives a stable identifier for a presentation from its contract
// and frame count.
func DocumentID(p *PlayablePresentation) [16]byte {
	var seed [8]byte
	binary.LittleEndian.PutUint16(seed[0:2], p.Contract.Width)
	binary.LittleEndian.PutUint16(seed[2:4], p.Contract.Height)
	binary.LittleEndian.PutUint32(seed[4:8], uint32(len(p.Frames)))
	sum := sha256.Sum256(seed[:])
	var id [16]byte
	copy(id[:], sum[:16])
	return id
}

// WriteBinary streams a presentation as contract, frames, markers and an end record.
func WriteBinary(w io.Writer, p *PlayablePresentation) error {
	bw := bufio.NewWriter(w)
	id := DocumentID(p)
	seq := uint64(0)
	write := func(t MessageType, payload []byte) error {
		hdr := Header{Version: Version, Type: t, Flags: FlagChecksum, DocumentID: id, Sequence: seq}
		seq++
		return WriteMessage(bw, hdr, payload)
	}

	contract, err := EncodeContract(ContractInfo{
		Contract:    p.Contract,
		FrameCount:  uint32(len(p.Frames)),
		MarkerCount: uint32(len(p.Markers)),
	})
	if err != nil {
		return err
	}
	if err := write(MsgContract, contract); err != nil {
		return err
	}
	for i, f := range p.Frames {
		delta, err := DeltaFromFrame(i, f)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		payload, err := EncodeFrameDelta(delta)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := write(MsgFrame, payload); err != nil {
			return err
		}
	}
	for _, m := range p.Markers {
		payload, err := EncodeMarker(m)
		if err != nil {
			return err
		}
		if err := write(MsgMarker, payload); err != nil {
			return err
		}
	}
	if err := write(MsgEnd, nil); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadBinary reverses WriteBinary.
func ReadBinary(r io.Reader) (*PlayablePresentation, error) {
	br := bufio.NewReader(r)
	hdr, payload, err := ReadMessage(br)
	if err != nil {
		return nil, err
	}
	if hdr.Type != MsgContract {
		return nil, fmt.Errorf("%w: type %d before contract", ErrUnexpectedRecord, hdr.Type)
	}
	info, err := DecodeContract(payload)
	if err != nil {
		return nil, err
	}
	p := &PlayablePresentation{
		Contract: info.Contract,
		Frames:   make([]Frame, 0, info.FrameCount),
	}
	for {
		hdr, payload, err := ReadMessage(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: missing end record", ErrShortPayload)
			}
			return nil, err
		}
		switch hdr.Type {
		case MsgFrame:
			delta, err := DecodeFrameDelta(payload)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", len(p.Frames), err)
			}
			if int(delta.Index) != len(p.Frames) {
				return nil, fmt.Errorf("%w: frame %d out of order", ErrUnexpectedRecord, delta.Index)
			}
			f, err := delta.Frame(p.Contract)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", delta.Index, err)
			}
			p.Frames = append(p.Frames, f)
		case MsgMarker:
			m, err := DecodeMarker(payload)
			if err != nil {
				return nil, err
			}
			p.Markers = append(p.Markers, m)
		case MsgEnd:
			if uint32(len(p.Frames)) != info.FrameCount {
				return nil, fmt.Errorf("%w: declared %d frames, read %d", ErrShortPayload, info.FrameCount, len(p.Frames))
			}
			return p, nil
		default:
			return nil, fmt.Errorf("%w: type %d", ErrUnexpectedRecord, hdr.Type)
		}
	}
}
