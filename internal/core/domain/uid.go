package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// StageFlags carries boolean configuration bits of a UID.
type StageFlags uint32

const (
	// FlagStereo duplicates primitives for a second eye.
	FlagStereo StageFlags = 1 << iota
	// FlagWireframe expands triangles into outlines.
	FlagWireframe
	// FlagPerPixelFog evaluates fog in the pixel stage.
	FlagPerPixelFog
)

// UIDSize is the length of the canonical binary encoding of a UID.
const UIDSize = 28

// UID is the structural key of a generated program variant.
//
// Two UIDs are equal iff every field is equal, so a UID is usable directly as a map key.
// Generators must zero every field the stage's program text does not depend on.
type UID struct {
	Stage      Stage
	Topology   Topology
	AlphaMode  AlphaMode
	Components ComponentMask
	Flags      StageFlags
	// Fixed holds a stage-specific snapshot of numeric fixed-function state.
	Fixed [4]uint32
}

// IsPassthrough reports whether the UID describes a stage that performs no work.
func (u UID) IsPassthrough() bool {
	return u.Stage == StageGeometry &&
		u.Topology == TopologyTriangles &&
		u.Flags&(FlagStereo|FlagWireframe) == 0
}

// AppendBinary appends the canonical little-endian encoding of u to dst.
func (u UID) AppendBinary(dst []byte) []byte {
	dst = append(dst, byte(u.Stage), byte(u.Topology), byte(u.AlphaMode), 0)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(u.Components))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(u.Flags))
	for _, v := range u.Fixed {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (u UID) MarshalBinary() ([]byte, error) {
	return u.AppendBinary(make([]byte, 0, UIDSize)), nil
}

// UnmarshalUID decodes a UID from its canonical encoding.
func UnmarshalUID(b []byte) (UID, error) {
	if len(b) != UIDSize {
		return UID{}, zerr.With(ErrInvalidUID, "length", len(b))
	}
	u := UID{
		Stage:      Stage(b[0]),
		Topology:   Topology(b[1]),
		AlphaMode:  AlphaMode(b[2]),
		Components: ComponentMask(binary.LittleEndian.Uint32(b[4:])),
		Flags:      StageFlags(binary.LittleEndian.Uint32(b[8:])),
	}
	if !u.Stage.Valid() || b[3] != 0 {
		return UID{}, zerr.With(ErrInvalidUID, "stage", b[0])
	}
	for i := range u.Fixed {
		u.Fixed[i] = binary.LittleEndian.Uint32(b[12+4*i:])
	}
	return u, nil
}

// Hash returns a deterministic 64-bit hash of the UID.
func (u UID) Hash() uint64 {
	var buf [UIDSize]byte
	return xxhash.Sum64(u.AppendBinary(buf[:0]))
}

// String returns a short printable identifier.
func (u UID) String() string {
	return fmt.Sprintf("%s:%016x", u.Stage.Short(), u.Hash())
}

// KeyCodec converts cache keys to and from their persisted form.
type KeyCodec[K any] interface {
	// AppendKey appends the encoding of k to dst.
	AppendKey(dst []byte, k K) []byte
	// DecodeKey decodes a key previously produced by AppendKey.
	DecodeKey(b []byte) (K, error)
	// KeySize is the fixed encoded length, or 0 when keys vary in length.
	KeySize() int
}

// UIDCodec is the KeyCodec of UID.
type UIDCodec struct{}

// AppendKey implements KeyCodec.
func (UIDCodec) AppendKey(dst []byte, k UID) []byte { return k.AppendBinary(dst) }

// DecodeKey implements KeyCodec.
func (UIDCodec) DecodeKey(b []byte) (UID, error) { return UnmarshalUID(b) }

// KeySize implements KeyCodec.
func (UIDCodec) KeySize() int { return UIDSize }

// StageCodec is the KeyCodec of the UIDs of one stage. DecodeKey rejects keys of any other
// stage, so a mirror never fills the store of the wrong stage.
type StageCodec struct {
	Stage Stage
}

// AppendKey implements KeyCodec.
func (c StageCodec) AppendKey(dst []byte, k UID) []byte { return k.AppendBinary(dst) }

// DecodeKey implements KeyCodec.
func (c StageCodec) DecodeKey(b []byte) (UID, error) {
	u, err := UnmarshalUID(b)
	if err != nil {
		return UID{}, err
	}
	if u.Stage != c.Stage {
		return UID{}, zerr.With(zerr.With(ErrInvalidUID, "stage", u.Stage.String()), "expected", c.Stage.String())
	}
	return u, nil
}

// KeySize implements KeyCodec.
func (StageCodec) KeySize() int { return UIDSize }
