// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/wrappers"
)

const (
	idLen      = len(ids.ID{})
	shortIDLen = len(ids.ShortID{})

	instanceLen = 2*idLen + shortIDLen + wrappers.IntLen + wrappers.BoolLen
)

// instance is the long-lived configuration of a pool.
type instance struct {
	asset0  ids.ID
	asset1  ids.ID
	factory ids.ShortID
	feeBps  uint32
	paused  bool
}

func (i *instance) bytes() ([]byte, error) {
	p := wrappers.Packer{MaxSize: instanceLen}
	p.PackFixedBytes(i.asset0[:])
	p.PackFixedBytes(i.asset1[:])
	p.PackFixedBytes(i.factory[:])
	p.PackInt(i.feeBps)
	p.PackBool(i.paused)
	return p.Bytes, p.Err
}

func parseInstance(b []byte) (*instance, error) {
	if len(b) != instanceLen {
		return nil, fmt.Errorf("%w: instance is %d bytes", state.ErrStateCorrupted, len(b))
	}

	i := &instance{}
	p := wrappers.Packer{Bytes: b}
	copy(i.asset0[:], p.UnpackFixedBytes(idLen))
	copy(i.asset1[:], p.UnpackFixedBytes(idLen))
	copy(i.factory[:], p.UnpackFixedBytes(shortIDLen))
	i.feeBps = p.UnpackInt()
	i.paused = p.UnpackBool()
	return i, p.Err
}

// direction reports whether tokenIn is asset0.
func (i *instance) direction(tokenIn ids.ID) (bool, error) {
	switch tokenIn {
	case i.asset0:
		return true, nil
	case i.asset1:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s is not in pair (%s, %s)", errs.ErrInvalidToken, tokenIn, i.asset0, i.asset1)
	}
}

func (i *instance) requireFactory(caller ids.ShortID) error {
	if caller != i.factory {
		return fmt.Errorf("%w: %s is not the factory", errs.ErrUnauthorized, caller)
	}
	return nil
}
