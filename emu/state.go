package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"
)

// Save container format constants. The container wraps the engine's
// serialized state so harness fields (step counter, capture time) survive
// a process restart alongside it.
const (
	stateVersion    = 1
	stateMagic      = "PKGYMState\x00\x00"
	stateHeaderSize = 38 // magic(12) + version(2) + step(8) + timestamp(8) + engineLen(4) + dataCRC(4)
)

// ErrCorruptSave is returned when a save blob fails structural validation.
// Wrapped errors carry the specific reason.
var ErrCorruptSave = errors.New("corrupt save state")

// SaveState is a decoded save container.
type SaveState struct {
	Step       uint64
	CapturedAt time.Time
	Engine     []byte
}

// EncodeSaveState wraps engine state in the versioned container.
func EncodeSaveState(step uint64, capturedAt time.Time, engine []byte) []byte {
	data := make([]byte, stateHeaderSize+len(engine))

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint64(data[14:22], step)
	binary.LittleEndian.PutUint64(data[22:30], uint64(capturedAt.Unix()))
	binary.LittleEndian.PutUint32(data[30:34], uint32(len(engine)))
	copy(data[stateHeaderSize:], engine)

	crc := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[34:38], crc)

	return data
}

// DecodeSaveState validates and unpacks a save container. Any structural
// problem is reported as ErrCorruptSave; the engine payload is returned
// as a copy so callers may retain it.
func DecodeSaveState(data []byte) (SaveState, error) {
	if len(data) < stateHeaderSize {
		return SaveState{}, fmt.Errorf("%w: too short (%d bytes)", ErrCorruptSave, len(data))
	}

	if string(data[0:12]) != stateMagic {
		return SaveState{}, fmt.Errorf("%w: invalid magic", ErrCorruptSave)
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return SaveState{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptSave, version)
	}

	engineLen := binary.LittleEndian.Uint32(data[30:34])
	if int(engineLen) != len(data)-stateHeaderSize {
		return SaveState{}, fmt.Errorf("%w: engine length %d does not match payload %d",
			ErrCorruptSave, engineLen, len(data)-stateHeaderSize)
	}

	expectedCRC := binary.LittleEndian.Uint32(data[34:38])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return SaveState{}, fmt.Errorf("%w: checksum mismatch", ErrCorruptSave)
	}

	engine := make([]byte, engineLen)
	copy(engine, data[stateHeaderSize:])

	return SaveState{
		Step:       binary.LittleEndian.Uint64(data[14:22]),
		CapturedAt: time.Unix(int64(binary.LittleEndian.Uint64(data[22:30])), 0),
		Engine:     engine,
	}, nil
}
