// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package errs defines the coded error taxonomy shared by every AMM package.
//
// Each failure kind has a stable numeric code so that collaborators (routers,
// RPC clients) can branch on the kind without parsing messages. Errors are
// compared by code, which lets callers wrap them with context:
//
//	err := fmt.Errorf("%w: reserve0 is zero", errs.ErrInsufficientLiquidity)
//	errors.Is(err, errs.ErrInsufficientLiquidity) // true
package errs

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code uint32

const (
	// General
	CodeAlreadyInitialized Code = 1
	CodeNotInitialized     Code = 2
	CodeUnauthorized       Code = 3
	CodeInvalidArgument    Code = 4
	CodeOverflow           Code = 5
	CodeUnderflow          Code = 6
	CodeDivisionByZero     Code = 7
	CodeReentrancy         Code = 8
	CodeInvalidInput       Code = 9

	// Token
	CodeInvalidToken          Code = 100
	CodeSameToken             Code = 101
	CodeInsufficientBalance   Code = 102
	CodeInsufficientAllowance Code = 103
	CodeTransferFailed        Code = 104

	// Liquidity
	CodeInsufficientLiquidity Code = 200
	CodeInvalidAmount         Code = 201
	CodeInsufficientShares    Code = 202
	CodeMinimumNotMet         Code = 203
	CodePoolNotFound          Code = 204
	CodePairExists            Code = 205
	CodePairNotFound          Code = 206

	// Swap
	CodeSlippageExceeded         Code = 300
	CodeDeadlineExpired          Code = 301
	CodeInsufficientOutputAmount Code = 302
	CodeExcessiveInputAmount     Code = 303
	CodeInvalidPath              Code = 304
	CodePriceImpactTooHigh       Code = 305

	// Admin
	CodeInvalidFee     Code = 500
	CodeFeeTooHigh     Code = 501
	CodeContractPaused Code = 504
)

var (
	ErrAlreadyInitialized = New(CodeAlreadyInitialized, "already initialized")
	ErrNotInitialized     = New(CodeNotInitialized, "not initialized")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrInvalidArgument    = New(CodeInvalidArgument, "invalid argument")
	ErrOverflow           = New(CodeOverflow, "overflow")
	ErrUnderflow          = New(CodeUnderflow, "underflow")
	ErrDivisionByZero     = New(CodeDivisionByZero, "division by zero")
	ErrReentrancy         = New(CodeReentrancy, "reentrant call")
	ErrInvalidInput       = New(CodeInvalidInput, "invalid input")

	ErrInvalidToken          = New(CodeInvalidToken, "invalid token")
	ErrSameToken             = New(CodeSameToken, "cannot create pool with same token")
	ErrInsufficientBalance   = New(CodeInsufficientBalance, "insufficient balance")
	ErrInsufficientAllowance = New(CodeInsufficientAllowance, "insufficient allowance")
	ErrTransferFailed        = New(CodeTransferFailed, "transfer failed")

	ErrInsufficientLiquidity = New(CodeInsufficientLiquidity, "insufficient liquidity")
	ErrInvalidAmount         = New(CodeInvalidAmount, "invalid amount")
	ErrInsufficientShares    = New(CodeInsufficientShares, "insufficient shares")
	ErrMinimumNotMet         = New(CodeMinimumNotMet, "minimum amount not met")
	ErrPoolNotFound          = New(CodePoolNotFound, "pool not found")
	ErrPairExists            = New(CodePairExists, "pair already exists")
	ErrPairNotFound          = New(CodePairNotFound, "pair not found")

	ErrSlippageExceeded         = New(CodeSlippageExceeded, "slippage exceeded")
	ErrDeadlineExpired          = New(CodeDeadlineExpired, "deadline expired")
	ErrInsufficientOutputAmount = New(CodeInsufficientOutputAmount, "insufficient output amount")
	ErrExcessiveInputAmount     = New(CodeExcessiveInputAmount, "excessive input amount")
	ErrInvalidPath              = New(CodeInvalidPath, "invalid path")
	ErrPriceImpactTooHigh       = New(CodePriceImpactTooHigh, "price impact too high")

	ErrInvalidFee     = New(CodeInvalidFee, "invalid fee")
	ErrFeeTooHigh     = New(CodeFeeTooHigh, "fee too high")
	ErrContractPaused = New(CodeContractPaused, "contract paused")
)

// Error is a failure carrying a stable code.
type Error struct {
	Code Code
	Msg  string
}

// New returns an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or 0 if there is
// none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Format renders err with its code prefix, as reported to RPC clients.
func Format(err error) string {
	if code := CodeOf(err); code != 0 {
		return fmt.Sprintf("code %d: %s", code, err)
	}
	return err.Error()
}
