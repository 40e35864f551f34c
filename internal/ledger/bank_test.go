package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBank() *Bank {
	return New(Config{IdleTimeout: time.Hour, StaleCheckInterval: time.Hour}, nil, nil)
}

// Scenario 1: duplicate CreateUser is rejected.
func TestScenarioCreateUserDuplicateRejected(t *testing.T) {
	b := newTestBank()
	defer b.Close()

	require.NoError(t, b.CreateUser("alice"))
	assert.ErrorIs(t, b.CreateUser("alice"), ErrUserAlreadyExists)
}

// Scenario 2: deposit, withdraw, and a zero-balance read on an
// untouched currency.
func TestScenarioDepositWithdrawGetBalance(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("alice"))

	res, err := b.Deposit(ctx, "alice", 1000, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Balance)

	res, err = b.Withdraw(ctx, "alice", 400, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Balance)

	res, err = b.GetBalance(ctx, "alice", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Balance)
}

// Scenario 3: overdraft leaves the balance unchanged.
func TestScenarioWithdrawInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("alice"))
	_, err := b.Deposit(ctx, "alice", 600, "EUR")
	require.NoError(t, err)

	_, err = b.Withdraw(ctx, "alice", 10000, "EUR")
	assert.ErrorIs(t, err, ErrNotEnoughMoney)

	res, err := b.GetBalance(ctx, "alice", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(600), res.Balance)
}

// Scenario 4: a two-party transfer moves funds and reports
// both resulting balances.
func TestScenarioTransferMovesFunds(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("alice"))
	require.NoError(t, b.CreateUser("bob"))
	_, err := b.Deposit(ctx, "alice", 600, "EUR")
	require.NoError(t, err)

	res, err := b.Send(ctx, "alice", "bob", 400, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.FromBalance)
	assert.Equal(t, int64(400), res.ToBalance)
}

func TestSendUnknownSenderOrReceiver(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()
	require.NoError(t, b.CreateUser("alice"))

	_, err := b.Send(ctx, "ghost", "alice", 100, "EUR")
	assert.ErrorIs(t, err, ErrSenderDoesNotExist)

	_, err = b.Send(ctx, "alice", "ghost", 100, "EUR")
	assert.ErrorIs(t, err, ErrReceiverDoesNotExist)
}

// Scenario 5 at the Bank level: 100 concurrent reads against one account
// each either succeed or fail with ErrTooManyRequestsToUser. Each read
// releases its backlog slot when it returns, so how many succeed in total
// is not fixed; the cap itself is exercised on the account directly in
// account_test.go.
func TestScenarioConcurrentAdmissionCapsAtTen(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()
	require.NoError(t, b.CreateUser("alice"))
	_, err := b.Deposit(ctx, "alice", 1_000_000, "EUR")
	require.NoError(t, err)

	const attempts = 100
	var succeeded, rejected int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := b.GetBalance(ctx, "alice", "EUR")
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			} else {
				assert.ErrorIs(t, err, ErrTooManyRequestsToUser)
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(attempts), succeeded+rejected)
	assert.LessOrEqual(t, int32(0), rejected)
}

// Scenario 6: keeping the receiver busy produces
// TooManyRequestsToReceiver without ever diminishing the sender's balance.
func TestScenarioBusyReceiverLeavesSenderBalanceConsistent(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("alice"))
	require.NoError(t, b.CreateUser("bob"))
	const initial = 100000
	_, err := b.Deposit(ctx, "alice", initial, "EUR")
	require.NoError(t, err)

	var wg sync.WaitGroup

	const backgroundDeposits = 100
	wg.Add(backgroundDeposits)
	for i := 0; i < backgroundDeposits; i++ {
		go func() {
			defer wg.Done()
			_, _ = b.Deposit(ctx, "bob", 1, "EUR")
		}()
	}

	const transfers = 100
	var errCount int32
	wg.Add(transfers)
	for i := 0; i < transfers; i++ {
		go func() {
			defer wg.Done()
			_, err := b.Send(ctx, "alice", "bob", 1, "EUR")
			if err != nil {
				assert.True(t,
					err == ErrTooManyRequestsToReceiver || err == ErrTooManyRequestsToSender,
					"unexpected transfer error: %v", err)
				atomic.AddInt32(&errCount, 1)
			}
		}()
	}
	wg.Wait()

	res, err := b.GetBalance(ctx, "alice", "EUR")
	require.NoError(t, err)
	wantBalance := int64(initial) - int64(transfers-int(errCount))
	assert.Equal(t, wantBalance, res.Balance)
}

// Scenario 7: a self-transfer is a no-op on balance but still
// reports both sides.
func TestScenarioSelfTransferIsANoOp(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("u"))
	_, err := b.Deposit(ctx, "u", 500, "EUR")
	require.NoError(t, err)

	res, err := b.Send(ctx, "u", "u", 200, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.FromBalance)
	assert.Equal(t, int64(500), res.ToBalance)

	bal, err := b.GetBalance(ctx, "u", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal.Balance)
}

func TestSelfTransferInsufficientFundsReturnsNotEnoughMoney(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("u"))
	_, err := b.Deposit(ctx, "u", 10, "EUR")
	require.NoError(t, err)

	_, err = b.Send(ctx, "u", "u", 500, "EUR")
	assert.ErrorIs(t, err, ErrNotEnoughMoney)

	bal, err := b.GetBalance(ctx, "u", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.Balance)
}

// Property P8: after a Worker idles out, the account
// transparently starts a fresh one on the next request.
func TestWorkerIdleOutThenFreshWorkerOnNextRequest(t *testing.T) {
	b := New(Config{IdleTimeout: 20 * time.Millisecond, StaleCheckInterval: time.Hour}, nil, nil)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.CreateUser("alice"))
	_, err := b.Deposit(ctx, "alice", 100, "EUR")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond) // let the worker idle out

	res, err := b.GetBalance(ctx, "alice", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Balance, "balance must survive a worker restart")
}

func TestValidation(t *testing.T) {
	b := newTestBank()
	defer b.Close()
	ctx := context.Background()
	require.NoError(t, b.CreateUser("alice"))

	res, err := b.Deposit(ctx, "alice", 0, "EUR")
	require.NoError(t, err, "a zero amount is valid and a no-op")
	assert.Equal(t, int64(0), res.Balance)

	_, err = b.Deposit(ctx, "alice", -1, "EUR")
	assert.True(t, IsWrongArguments(err), "a negative amount is invalid")

	_, err = b.Deposit(ctx, "alice", 100, "")
	assert.True(t, IsWrongArguments(err))

	_, err = b.Deposit(ctx, "ghost", 100, "EUR")
	assert.ErrorIs(t, err, ErrUserDoesNotExist)
}
