// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes a factory and its pools over JSON-RPC 2.0.
//
// The service trusts the caller field of each request. It is meant to sit
// behind an authenticating gateway or to be used against a local ledger.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/amm/asset"
	"github.com/luxfi/amm/errs"
	"github.com/luxfi/amm/factory"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/state"
	"github.com/luxfi/amm/utils/json"
)

// ServiceName is the name the service is registered under.
const ServiceName = "amm"

var errNoLedger = errors.New("no local asset ledger configured")

// EmptyReply is the reply of calls that return nothing.
type EmptyReply struct{}

// Service implements the amm JSON-RPC methods.
type Service struct {
	log     log.Logger
	factory *factory.Factory

	// Optional. Backs RegisterAsset, MintAsset and AssetBalance.
	state  *state.State
	ledger *asset.Ledger
}

// NewService returns a service over f. ledger and s may be nil, which
// disables the local ledger methods.
func NewService(logger log.Logger, f *factory.Factory, s *state.State, ledger *asset.Ledger) *Service {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Service{
		log:     logger,
		factory: f,
		state:   s,
		ledger:  ledger,
	}
}

// NewHandler returns an http.Handler serving the service.
func NewHandler(service *Service) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(service, ServiceName)
}

// rpcError keeps the numeric code visible to clients both in the message and
// as structured data.
func rpcError(err error) error {
	if err == nil {
		return nil
	}
	e := &json2.Error{
		Code:    json2.E_SERVER,
		Message: errs.Format(err),
	}
	if code := errs.CodeOf(err); code != 0 {
		e.Data = uint32(code)
	}
	return e
}

func (s *Service) called(method string) {
	s.log.Debug("API called",
		log.String("service", ServiceName),
		log.String("method", method),
	)
}

// PoolArgs identifies a pool.
type PoolArgs struct {
	PoolID ids.ID `json:"poolID"`
}

// PairArgs identifies an asset pair, in either order.
type PairArgs struct {
	AssetA ids.ID `json:"assetA"`
	AssetB ids.ID `json:"assetB"`
}

// PairReply describes a pool.
type PairReply struct {
	PoolID  ids.ID      `json:"poolID"`
	Account ids.ShortID `json:"account"`
	Asset0  ids.ID      `json:"asset0"`
	Asset1  ids.ID      `json:"asset1"`
}

func pairReply(ctx context.Context, p *pool.Pool, reply *PairReply) error {
	asset0, asset1, err := p.Assets(ctx)
	if err != nil {
		return err
	}
	reply.PoolID = p.ID()
	reply.Account = p.Account()
	reply.Asset0 = asset0
	reply.Asset1 = asset1
	return nil
}

// CreatePair creates the pool for a pair.
func (s *Service) CreatePair(r *http.Request, args *PairArgs, reply *PairReply) error {
	s.called("createPair")

	p, err := s.factory.CreatePair(r.Context(), args.AssetA, args.AssetB)
	if err != nil {
		return rpcError(err)
	}
	return rpcError(pairReply(r.Context(), p, reply))
}

// GetPair returns the pool for a pair.
func (s *Service) GetPair(r *http.Request, args *PairArgs, reply *PairReply) error {
	s.called("getPair")

	p, err := s.factory.GetPair(args.AssetA, args.AssetB)
	if err != nil {
		return rpcError(err)
	}
	return rpcError(pairReply(r.Context(), p, reply))
}

// ListPairsReply lists pools in creation order.
type ListPairsReply struct {
	PoolIDs []ids.ID `json:"poolIDs"`
}

// ListPairs returns every pool ID in creation order.
func (s *Service) ListPairs(_ *http.Request, _ *struct{}, reply *ListPairsReply) error {
	s.called("listPairs")

	reply.PoolIDs = s.factory.AllPairs()
	return nil
}

// InfoReply is a pool snapshot.
type InfoReply struct {
	PoolID      ids.ID      `json:"poolID"`
	Account     ids.ShortID `json:"account"`
	Factory     ids.ShortID `json:"factory"`
	Asset0      ids.ID      `json:"asset0"`
	Asset1      ids.ID      `json:"asset1"`
	Reserve0    json.Int128 `json:"reserve0"`
	Reserve1    json.Int128 `json:"reserve1"`
	TotalShares json.Int128 `json:"totalShares"`
	FeeBps      json.Uint32 `json:"feeBps"`
	KLast       string      `json:"kLast"`
	Paused      bool        `json:"paused"`
}

// GetInfo returns a snapshot of a pool.
func (s *Service) GetInfo(r *http.Request, args *PoolArgs, reply *InfoReply) error {
	s.called("getInfo")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	info, err := p.Info(r.Context())
	if err != nil {
		return rpcError(err)
	}
	reply.PoolID = info.ID
	reply.Account = info.Account
	reply.Factory = info.Factory
	reply.Asset0 = info.Asset0
	reply.Asset1 = info.Asset1
	reply.Reserve0 = json.NewInt128(info.Reserve0)
	reply.Reserve1 = json.NewInt128(info.Reserve1)
	reply.TotalShares = json.NewInt128(info.TotalShares)
	reply.FeeBps = json.Uint32(info.FeeBps)
	reply.KLast = info.KLast.String()
	reply.Paused = info.Paused
	return nil
}

// ReservesReply holds a pool's reserves.
type ReservesReply struct {
	Reserve0 json.Int128 `json:"reserve0"`
	Reserve1 json.Int128 `json:"reserve1"`
}

// GetReserves returns a pool's reserves.
func (s *Service) GetReserves(r *http.Request, args *PoolArgs, reply *ReservesReply) error {
	s.called("getReserves")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	reserve0, reserve1, err := p.Reserves(r.Context())
	if err != nil {
		return rpcError(err)
	}
	reply.Reserve0 = json.NewInt128(reserve0)
	reply.Reserve1 = json.NewInt128(reserve1)
	return nil
}

// QuoteArgs prices one side of a swap.
type QuoteArgs struct {
	PoolID ids.ID      `json:"poolID"`
	Token  ids.ID      `json:"token"`
	Amount json.Int128 `json:"amount"`
}

// AmountReply holds a single amount.
type AmountReply struct {
	Amount json.Int128 `json:"amount"`
}

// GetAmountOut returns the output of selling amount of token.
func (s *Service) GetAmountOut(r *http.Request, args *QuoteArgs, reply *AmountReply) error {
	s.called("getAmountOut")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	out, err := p.GetAmountOut(r.Context(), args.Amount.Big(), args.Token)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = json.NewInt128(out)
	return nil
}

// GetAmountIn returns the input needed to buy amount of token.
func (s *Service) GetAmountIn(r *http.Request, args *QuoteArgs, reply *AmountReply) error {
	s.called("getAmountIn")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	in, err := p.GetAmountIn(r.Context(), args.Amount.Big(), args.Token)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = json.NewInt128(in)
	return nil
}

// PriceImpactReply holds a price impact in basis points.
type PriceImpactReply struct {
	ImpactBps json.Uint32 `json:"impactBps"`
}

// GetPriceImpact returns the price impact of selling amount of token.
func (s *Service) GetPriceImpact(r *http.Request, args *QuoteArgs, reply *PriceImpactReply) error {
	s.called("getPriceImpact")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	impact, err := p.PriceImpact(r.Context(), args.Amount.Big(), args.Token)
	if err != nil {
		return rpcError(err)
	}
	reply.ImpactBps = json.Uint32(impact)
	return nil
}

// DepositArgs adds liquidity.
type DepositArgs struct {
	PoolID         ids.ID      `json:"poolID"`
	Caller         ids.ShortID `json:"caller"`
	Amount0Desired json.Int128 `json:"amount0Desired"`
	Amount1Desired json.Int128 `json:"amount1Desired"`
	Amount0Min     json.Int128 `json:"amount0Min"`
	Amount1Min     json.Int128 `json:"amount1Min"`
}

// DepositReply reports what a deposit used and minted.
type DepositReply struct {
	Amount0 json.Int128 `json:"amount0"`
	Amount1 json.Int128 `json:"amount1"`
	Shares  json.Int128 `json:"shares"`
}

// Deposit adds liquidity to a pool.
func (s *Service) Deposit(r *http.Request, args *DepositArgs, reply *DepositReply) error {
	s.called("deposit")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	res, err := p.Deposit(
		r.Context(),
		args.Caller,
		args.Amount0Desired.Big(),
		args.Amount1Desired.Big(),
		args.Amount0Min.Big(),
		args.Amount1Min.Big(),
	)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount0 = json.NewInt128(res.Amount0)
	reply.Amount1 = json.NewInt128(res.Amount1)
	reply.Shares = json.NewInt128(res.Shares)
	return nil
}

// WithdrawArgs removes liquidity.
type WithdrawArgs struct {
	PoolID     ids.ID      `json:"poolID"`
	Caller     ids.ShortID `json:"caller"`
	Shares     json.Int128 `json:"shares"`
	Amount0Min json.Int128 `json:"amount0Min"`
	Amount1Min json.Int128 `json:"amount1Min"`
}

// AmountsReply holds one amount per pool asset.
type AmountsReply struct {
	Amount0 json.Int128 `json:"amount0"`
	Amount1 json.Int128 `json:"amount1"`
}

// Withdraw burns shares for the underlying assets.
func (s *Service) Withdraw(r *http.Request, args *WithdrawArgs, reply *AmountsReply) error {
	s.called("withdraw")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	amount0, amount1, err := p.Withdraw(
		r.Context(),
		args.Caller,
		args.Shares.Big(),
		args.Amount0Min.Big(),
		args.Amount1Min.Big(),
	)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount0 = json.NewInt128(amount0)
	reply.Amount1 = json.NewInt128(amount1)
	return nil
}

// SwapArgs sells AmountIn of TokenIn.
type SwapArgs struct {
	PoolID    ids.ID      `json:"poolID"`
	Caller    ids.ShortID `json:"caller"`
	TokenIn   ids.ID      `json:"tokenIn"`
	AmountIn  json.Int128 `json:"amountIn"`
	MinOut    json.Int128 `json:"minOut"`
	Recipient ids.ShortID `json:"recipient"`
	// Deadline, in unix seconds, applies to balance-based swaps. 0 disables
	// it.
	Deadline json.Uint64 `json:"deadline"`
	// FromBalance prices the pool's unaccounted balance of TokenIn instead
	// of transferring AmountIn from Caller. The output goes to Recipient.
	FromBalance bool `json:"fromBalance"`
}

// SwapReply reports the traded amounts.
type SwapReply struct {
	AmountIn  json.Int128 `json:"amountIn"`
	AmountOut json.Int128 `json:"amountOut"`
}

// Swap trades against a pool.
func (s *Service) Swap(r *http.Request, args *SwapArgs, reply *SwapReply) error {
	s.called("swap")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	if args.FromBalance {
		in, out, err := p.SwapFromBalance(r.Context(), args.Recipient, args.TokenIn, args.MinOut.Big(), uint64(args.Deadline))
		if err != nil {
			return rpcError(err)
		}
		reply.AmountIn = json.NewInt128(in)
		reply.AmountOut = json.NewInt128(out)
		return nil
	}

	out, err := p.Swap(r.Context(), args.Caller, args.TokenIn, args.AmountIn.Big(), args.MinOut.Big())
	if err != nil {
		return rpcError(err)
	}
	reply.AmountIn = args.AmountIn
	reply.AmountOut = json.NewInt128(out)
	return nil
}

// OwnerArgs identifies a share holder.
type OwnerArgs struct {
	PoolID ids.ID      `json:"poolID"`
	Owner  ids.ShortID `json:"owner"`
}

// BalanceOf returns the shares owner holds.
func (s *Service) BalanceOf(r *http.Request, args *OwnerArgs, reply *AmountReply) error {
	s.called("balanceOf")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	balance, err := p.BalanceOf(r.Context(), args.Owner)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = json.NewInt128(balance)
	return nil
}

// TotalShares returns the pool's share supply.
func (s *Service) TotalShares(r *http.Request, args *PoolArgs, reply *AmountReply) error {
	s.called("totalShares")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	supply, err := p.TotalShares(r.Context())
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = json.NewInt128(supply)
	return nil
}

// AllowanceArgs identifies a share allowance.
type AllowanceArgs struct {
	PoolID  ids.ID      `json:"poolID"`
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
}

// Allowance returns how many of owner's shares spender may move.
func (s *Service) Allowance(r *http.Request, args *AllowanceArgs, reply *AmountReply) error {
	s.called("allowance")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	allowance, err := p.Allowance(r.Context(), args.Owner, args.Spender)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount = json.NewInt128(allowance)
	return nil
}

// ShareTransferArgs moves or approves shares.
type ShareTransferArgs struct {
	PoolID ids.ID      `json:"poolID"`
	Caller ids.ShortID `json:"caller"`
	// From is only read by TransferFrom.
	From   ids.ShortID `json:"from"`
	To     ids.ShortID `json:"to"`
	Amount json.Int128 `json:"amount"`
}

// Transfer moves the caller's shares to To.
func (s *Service) Transfer(r *http.Request, args *ShareTransferArgs, _ *EmptyReply) error {
	s.called("transfer")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	return rpcError(p.Transfer(r.Context(), args.Caller, args.To, args.Amount.Big()))
}

// TransferFrom moves From's shares to To using the caller's allowance.
func (s *Service) TransferFrom(r *http.Request, args *ShareTransferArgs, _ *EmptyReply) error {
	s.called("transferFrom")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	return rpcError(p.TransferFrom(r.Context(), args.Caller, args.From, args.To, args.Amount.Big()))
}

// Approve sets the allowance of To over the caller's shares.
func (s *Service) Approve(r *http.Request, args *ShareTransferArgs, _ *EmptyReply) error {
	s.called("approve")

	p, err := s.factory.Pool(args.PoolID)
	if err != nil {
		return rpcError(err)
	}
	return rpcError(p.Approve(r.Context(), args.Caller, args.To, args.Amount.Big()))
}

// AdminArgs is a privileged call relayed through the factory.
type AdminArgs struct {
	PoolID ids.ID      `json:"poolID"`
	Caller ids.ShortID `json:"caller"`
	FeeBps json.Uint32 `json:"feeBps"`
	Paused bool        `json:"paused"`
	To     ids.ShortID `json:"to"`
}

// SetFee changes a pool's swap fee.
func (s *Service) SetFee(r *http.Request, args *AdminArgs, _ *EmptyReply) error {
	s.called("setFee")
	return rpcError(s.factory.SetFee(r.Context(), args.Caller, args.PoolID, uint32(args.FeeBps)))
}

// SetPaused pauses or unpauses a pool.
func (s *Service) SetPaused(r *http.Request, args *AdminArgs, _ *EmptyReply) error {
	s.called("setPaused")
	return rpcError(s.factory.SetPaused(r.Context(), args.Caller, args.PoolID, args.Paused))
}

// Sync sets a pool's reserves to its balances.
func (s *Service) Sync(r *http.Request, args *AdminArgs, _ *EmptyReply) error {
	s.called("sync")
	return rpcError(s.factory.Sync(r.Context(), args.Caller, args.PoolID))
}

// Skim sends a pool's excess balances to To.
func (s *Service) Skim(r *http.Request, args *AdminArgs, reply *AmountsReply) error {
	s.called("skim")

	amount0, amount1, err := s.factory.Skim(r.Context(), args.Caller, args.PoolID, args.To)
	if err != nil {
		return rpcError(err)
	}
	reply.Amount0 = json.NewInt128(amount0)
	reply.Amount1 = json.NewInt128(amount1)
	return nil
}

// AssetArgs addresses the local asset ledger.
type AssetArgs struct {
	AssetID ids.ID      `json:"assetID"`
	Account ids.ShortID `json:"account"`
	Amount  json.Int128 `json:"amount"`
}

func (s *Service) requireLedger() error {
	if s.ledger == nil || s.state == nil {
		return errNoLedger
	}
	return nil
}

// RegisterAsset adds an asset to the local ledger.
func (s *Service) RegisterAsset(r *http.Request, args *AssetArgs, _ *EmptyReply) error {
	s.called("registerAsset")

	if err := s.requireLedger(); err != nil {
		return rpcError(err)
	}
	err := s.state.Atomic(r.Context(), func(context.Context) error {
		return s.ledger.Register(args.AssetID)
	})
	return rpcError(err)
}

// MintAsset credits Amount of an asset to Account in the local ledger.
func (s *Service) MintAsset(r *http.Request, args *AssetArgs, _ *EmptyReply) error {
	s.called("mintAsset")

	if err := s.requireLedger(); err != nil {
		return rpcError(err)
	}
	err := s.state.Atomic(r.Context(), func(context.Context) error {
		return s.ledger.Mint(args.AssetID, args.Account, args.Amount.Big())
	})
	if err != nil {
		return rpcError(fmt.Errorf("failed to mint %s: %w", args.AssetID, err))
	}
	return nil
}

// AssetBalance returns Account's balance of an asset in the local ledger.
func (s *Service) AssetBalance(r *http.Request, args *AssetArgs, reply *AmountReply) error {
	s.called("assetBalance")

	if err := s.requireLedger(); err != nil {
		return rpcError(err)
	}
	err := s.state.Read(r.Context(), func() error {
		a, err := s.ledger.Asset(args.AssetID)
		if err != nil {
			return err
		}
		balance, err := a.BalanceOf(r.Context(), args.Account)
		if err != nil {
			return err
		}
		reply.Amount = json.NewInt128(balance)
		return nil
	})
	return rpcError(err)
}
