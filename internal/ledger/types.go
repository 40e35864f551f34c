// Package ledger implements the banking control plane: per-user
// serialization of balance mutations, a per-user backlog admission cap, and
// two-party transfer coordination with compensation. Balances are stored as
// int64 minor units (e.g. cents); the caller (HTTP layer) is responsible for
// converting to and from a two-decimal decimal representation.
package ledger

import "context"

// opKind tags a request's variant.
type opKind int

const (
	opDeposit opKind = iota
	opWithdraw
	opGetBalance
)

// opResult is the reply a Worker sends back for a single operation.
type opResult struct {
	balance int64
	err     error
}

// request is a tagged variant carrying a single-use reply channel, handed
// off to exactly one Worker goroutine for execution.
type request struct {
	ctx      context.Context
	kind     opKind
	amount   int64
	currency string
	reply    chan opResult
}

func newRequest(ctx context.Context, kind opKind, amount int64, currency string) *request {
	return &request{
		ctx:      ctx,
		kind:     kind,
		amount:   amount,
		currency: currency,
		reply:    make(chan opResult, 1),
	}
}

// OpResult is the public result of a single-user operation.
type OpResult struct {
	Balance int64
}

// TransferResult is the public result of a successful transfer.
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}
