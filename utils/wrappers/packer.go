// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientLength = errors.New("packer has insufficient length for input")
	ErrOutOfRange         = errors.New("integer does not fit the packed width")
	errNegativeOffset     = errors.New("negative offset")
	errInvalidInput       = errors.New("input does not match expected format")
	errBadBool            = errors.New("unexpected value when unpacking bool")

	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	two127 = new(big.Int).Lsh(big.NewInt(1), 127)
)

// Packer packs and unpacks a byte array from/to standard values
type Packer struct {
	Errs

	// The largest allowed size of expanding the byte array
	MaxSize int
	// The current byte array
	Bytes []byte
	// The offset that is being written to in the byte array
	Offset int
}

// PackByte appends a byte to the byte array
func (p *Packer) PackByte(val byte) {
	p.expand(ByteLen)
	if p.Errored() {
		return
	}

	p.Bytes[p.Offset] = val
	p.Offset++
}

// UnpackByte unpacks a byte from the byte array
func (p *Packer) UnpackByte() byte {
	p.checkSpace(ByteLen)
	if p.Errored() {
		return 0
	}

	val := p.Bytes[p.Offset]
	p.Offset += ByteLen
	return val
}

// PackInt appends an int to the byte array
func (p *Packer) PackInt(val uint32) {
	p.expand(IntLen)
	if p.Errored() {
		return
	}

	binary.BigEndian.PutUint32(p.Bytes[p.Offset:], val)
	p.Offset += IntLen
}

// UnpackInt unpacks an int from the byte array
func (p *Packer) UnpackInt() uint32 {
	p.checkSpace(IntLen)
	if p.Errored() {
		return 0
	}

	val := binary.BigEndian.Uint32(p.Bytes[p.Offset:])
	p.Offset += IntLen
	return val
}

// PackLong appends a long to the byte array
func (p *Packer) PackLong(val uint64) {
	p.expand(LongLen)
	if p.Errored() {
		return
	}

	binary.BigEndian.PutUint64(p.Bytes[p.Offset:], val)
	p.Offset += LongLen
}

// UnpackLong unpacks a long from the byte array
func (p *Packer) UnpackLong() uint64 {
	p.checkSpace(LongLen)
	if p.Errored() {
		return 0
	}

	val := binary.BigEndian.Uint64(p.Bytes[p.Offset:])
	p.Offset += LongLen
	return val
}

// PackBool packs a bool into the byte array
func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
}

// UnpackBool unpacks a bool from the byte array
func (p *Packer) UnpackBool() bool {
	b := p.UnpackByte()
	switch b {
	case 0:
		return false
	case 1:
		return true
	default:
		p.Add(errBadBool)
		return false
	}
}

// PackFixedBytes appends a byte slice with no length descriptor to the byte array
func (p *Packer) PackFixedBytes(bytes []byte) {
	p.expand(len(bytes))
	if p.Errored() {
		return
	}

	copy(p.Bytes[p.Offset:], bytes)
	p.Offset += len(bytes)
}

// UnpackFixedBytes unpacks a byte slice with no length descriptor from the byte array
func (p *Packer) UnpackFixedBytes(size int) []byte {
	p.checkSpace(size)
	if p.Errored() {
		return nil
	}

	bytes := p.Bytes[p.Offset : p.Offset+size]
	p.Offset += size
	return bytes
}

// PackInt128 appends a signed 128-bit integer in big-endian two's complement.
// A nil value packs as zero.
func (p *Packer) PackInt128(val *big.Int) {
	if val == nil {
		val = new(big.Int)
	}
	if val.Cmp(two127) >= 0 || val.Cmp(new(big.Int).Neg(two127)) < 0 {
		p.Add(ErrOutOfRange)
		return
	}
	p.expand(Int128Len)
	if p.Errored() {
		return
	}

	u := new(big.Int).Set(val)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	u.FillBytes(p.Bytes[p.Offset : p.Offset+Int128Len])
	p.Offset += Int128Len
}

// UnpackInt128 unpacks a signed 128-bit integer from the byte array
func (p *Packer) UnpackInt128() *big.Int {
	p.checkSpace(Int128Len)
	if p.Errored() {
		return new(big.Int)
	}

	val := new(big.Int).SetBytes(p.Bytes[p.Offset : p.Offset+Int128Len])
	if val.Cmp(two127) >= 0 {
		val.Sub(val, two128)
	}
	p.Offset += Int128Len
	return val
}

// PackUint256 appends an unsigned 256-bit integer. A nil value packs as zero.
func (p *Packer) PackUint256(val *uint256.Int) {
	if val == nil {
		val = new(uint256.Int)
	}
	p.expand(Uint256Len)
	if p.Errored() {
		return
	}

	b := val.Bytes32()
	copy(p.Bytes[p.Offset:], b[:])
	p.Offset += Uint256Len
}

// UnpackUint256 unpacks an unsigned 256-bit integer from the byte array
func (p *Packer) UnpackUint256() *uint256.Int {
	p.checkSpace(Uint256Len)
	if p.Errored() {
		return new(uint256.Int)
	}

	val := new(uint256.Int).SetBytes(p.Bytes[p.Offset : p.Offset+Uint256Len])
	p.Offset += Uint256Len
	return val
}

// checkSpace requires that there is at least bytes of write space left in the
// byte array. If this is not true, an error is added to the packer.
func (p *Packer) checkSpace(bytes int) {
	switch {
	case p.Offset < 0:
		p.Add(errNegativeOffset)
	case bytes < 0:
		p.Add(errInvalidInput)
	case len(p.Bytes)-p.Offset < bytes:
		p.Add(ErrInsufficientLength)
	}
}

// expand ensures that there is bytes bytes left of space in the byte slice.
// If this is not allowed due to the maximum size, an error is added to the packer.
func (p *Packer) expand(bytes int) {
	neededSize := bytes + p.Offset
	switch {
	case neededSize <= len(p.Bytes):
		return
	case neededSize > p.MaxSize:
		p.Err = ErrInsufficientLength
		return
	case neededSize <= cap(p.Bytes):
		p.Bytes = p.Bytes[:neededSize]
		return
	default:
		p.Bytes = append(p.Bytes[:cap(p.Bytes)], make([]byte, neededSize-cap(p.Bytes))...)
	}
}
