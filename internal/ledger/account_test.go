package ledger

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTryAdmitCapsAtMaxBacklog(t *testing.T) {
	acc := newAccount("alice")

	for i := 0; i < maxBacklog; i++ {
		require.True(t, acc.tryAdmit(), "admission %d should succeed", i)
	}
	assert.False(t, acc.tryAdmit(), "admission beyond maxBacklog should be rejected")
	assert.Equal(t, int32(maxBacklog), acc.backlogSize())
}

func TestAccountReleaseFreesASlot(t *testing.T) {
	acc := newAccount("alice")
	for i := 0; i < maxBacklog; i++ {
		require.True(t, acc.tryAdmit())
	}
	acc.release()
	assert.True(t, acc.tryAdmit())
}

func TestAccountReleaseNeverGoesNegative(t *testing.T) {
	acc := newAccount("alice")
	acc.release()
	acc.release()
	assert.Equal(t, int32(0), acc.backlogSize())
}

func TestAccountTryAdmitUnderConcurrency(t *testing.T) {
	acc := newAccount("alice")

	const workers = 50
	var admitted int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if acc.tryAdmit() {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, admitted, int32(maxBacklog))
	assert.Equal(t, admitted, acc.backlogSize())
}

func TestLedgerDepositAndWithdraw(t *testing.T) {
	acc := newAccount("alice")

	balance := acc.ledgerDeposit("USD", 500)
	assert.Equal(t, int64(500), balance)

	balance, err := acc.ledgerWithdraw("USD", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	assert.Equal(t, int64(300), acc.ledgerGet("USD"))
}

func TestLedgerWithdrawInsufficientFunds(t *testing.T) {
	acc := newAccount("alice")
	acc.ledgerDeposit("USD", 100)

	balance, err := acc.ledgerWithdraw("USD", 200)
	assert.ErrorIs(t, err, ErrNotEnoughMoney)
	assert.Equal(t, int64(100), balance, "balance must be unchanged on failed withdrawal")
	assert.Equal(t, int64(100), acc.ledgerGet("USD"))
}

func TestLedgerGetUntouchedCurrencyIsZero(t *testing.T) {
	acc := newAccount("alice")
	assert.Equal(t, int64(0), acc.ledgerGet("EUR"))
}
