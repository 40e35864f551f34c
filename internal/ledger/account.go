package ledger

import "sync/atomic"

// maxBacklog is the hard cap on concurrently admitted requests per user.
const maxBacklog = 10

// account is one user's record in the Registry. balances is touched
// exclusively by the Worker currently assigned to this account; every other
// field is safe for concurrent access from any goroutine.
type account struct {
	id string

	backlog   atomic.Int32
	workerRef atomic.Pointer[worker]

	// balances is private to the owning Worker. It is never read or written
	// outside of a request executed on this account's Worker goroutine.
	balances map[string]int64
}

func newAccount(id string) *account {
	return &account{
		id:       id,
		balances: make(map[string]int64),
	}
}

// tryAdmit is a compare-and-swap loop that admits up to maxBacklog
// concurrent requests. Using a CAS loop (rather than increment-then-rollback)
// means the counter
// never observably exceeds maxBacklog, even transiently, to a concurrent
// tryAdmit on the same account.
func (a *account) tryAdmit() bool {
	for {
		cur := a.backlog.Load()
		if cur >= maxBacklog {
			return false
		}
		if a.backlog.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// release is an atomic decrement of the backlog counter, floored at zero.
func (a *account) release() {
	for {
		cur := a.backlog.Load()
		if cur <= 0 {
			return
		}
		if a.backlog.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func (a *account) backlogSize() int32 {
	return a.backlog.Load()
}

// ledgerGet returns the balance for currency, or 0 if the currency has
// never been touched. A missing key is not an error.
func (a *account) ledgerGet(currency string) int64 {
	return a.balances[currency]
}

// ledgerDeposit adds amount to the balance for currency and returns the new
// balance. Deposits never fail on amount grounds.
func (a *account) ledgerDeposit(currency string, amount int64) int64 {
	newBalance := a.balances[currency] + amount
	a.balances[currency] = newBalance
	return newBalance
}

// ledgerWithdraw subtracts amount from the balance for currency, failing
// with ErrNotEnoughMoney if that would make the balance negative. On
// failure the balance is left unchanged.
func (a *account) ledgerWithdraw(currency string, amount int64) (int64, error) {
	cur := a.balances[currency]
	if cur < amount {
		return cur, ErrNotEnoughMoney
	}
	newBalance := cur - amount
	a.balances[currency] = newBalance
	return newBalance, nil
}
