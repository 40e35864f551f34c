package ledger

import (
	"context"
	"time"

	"github.com/r3e-network/ledger-core/internal/logging"
	"github.com/r3e-network/ledger-core/internal/metrics"
)

// Bank is the public entry point to the control plane. All of
// its methods are safe for concurrent use by any number of callers.
type Bank struct {
	reg        *registry
	reaper     *reaper
	dispatcher *dispatcher
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// Config holds the tunables a Bank needs that are not user input.
type Config struct {
	// IdleTimeout is how long a Worker waits on an empty inbox before
	// terminating. Mirrors STALE_HANDLER_TIMEOUT.
	IdleTimeout time.Duration
	// StaleCheckInterval paces the Reaper's periodic backstop sweep.
	StaleCheckInterval time.Duration
}

// New builds a Bank. logger and m may be nil in tests that don't care about
// observability.
func New(cfg Config, logger *logging.Logger, m *metrics.Metrics) *Bank {
	reg := newRegistry()
	rp := newReaper(reg, cfg.StaleCheckInterval, logger, m)
	rp.start()
	return &Bank{
		reg:        reg,
		reaper:     rp,
		dispatcher: newDispatcher(reg, rp, cfg.IdleTimeout, m),
		metrics:    m,
		logger:     logger,
	}
}

// Close stops the Reaper's periodic sweep. It does not terminate any live
// Worker goroutines; those exit on their own idle timeout.
func (b *Bank) Close() {
	b.reaper.stop()
}

// CreateUser registers a new user with a zero balance in every currency.
func (b *Bank) CreateUser(user string) error {
	if user == "" {
		return ErrWrongArguments("user must not be empty")
	}
	return b.reg.createUser(user)
}

// Deposit credits amount of currency to user's balance.
func (b *Bank) Deposit(ctx context.Context, user string, amount int64, currency string) (OpResult, error) {
	if err := validateAmount(amount, currency); err != nil {
		return OpResult{}, err
	}
	acc, err := b.dispatcher.lookupOrErr(user, ErrUserDoesNotExist)
	if err != nil {
		return OpResult{}, err
	}
	balance, err := b.dispatcher.submit(ctx, acc, opDeposit, amount, currency)
	b.recordBacklogRejection("deposit", err)
	return OpResult{Balance: balance}, err
}

// Withdraw debits amount of currency from user's balance, failing with
// ErrNotEnoughMoney if that would make the balance negative.
func (b *Bank) Withdraw(ctx context.Context, user string, amount int64, currency string) (OpResult, error) {
	if err := validateAmount(amount, currency); err != nil {
		return OpResult{}, err
	}
	acc, err := b.dispatcher.lookupOrErr(user, ErrUserDoesNotExist)
	if err != nil {
		return OpResult{}, err
	}
	balance, err := b.dispatcher.submit(ctx, acc, opWithdraw, amount, currency)
	b.recordBacklogRejection("withdraw", err)
	return OpResult{Balance: balance}, err
}

// GetBalance reads user's balance for currency. Reads go through the
// Worker like any other operation, so a read observes a currently-queued
// mutation's effects in submission order and is itself subject to the
// backlog cap.
func (b *Bank) GetBalance(ctx context.Context, user string, currency string) (OpResult, error) {
	if currency == "" {
		return OpResult{}, ErrWrongArguments("currency must not be empty")
	}
	acc, err := b.dispatcher.lookupOrErr(user, ErrUserDoesNotExist)
	if err != nil {
		return OpResult{}, err
	}
	balance, err := b.dispatcher.submit(ctx, acc, opGetBalance, 0, currency)
	b.recordBacklogRejection("get_balance", err)
	return OpResult{Balance: balance}, err
}

// Send transfers amount of currency from sender to receiver.
func (b *Bank) Send(ctx context.Context, sender, receiver string, amount int64, currency string) (TransferResult, error) {
	if err := validateAmount(amount, currency); err != nil {
		return TransferResult{}, err
	}
	senderAcc, err := b.dispatcher.lookupOrErr(sender, ErrSenderDoesNotExist)
	if err != nil {
		return TransferResult{}, err
	}
	receiverAcc, err := b.dispatcher.lookupOrErr(receiver, ErrReceiverDoesNotExist)
	if err != nil {
		return TransferResult{}, err
	}

	fromBalance, toBalance, err := b.dispatcher.transfer(ctx, senderAcc, receiverAcc, amount, currency)
	switch err {
	case ErrTooManyRequestsToSender:
		b.incBacklogRejection("transfer_sender")
	case ErrTooManyRequestsToReceiver:
		b.incBacklogRejection("transfer_receiver")
	}
	return TransferResult{FromBalance: fromBalance, ToBalance: toBalance}, err
}

func (b *Bank) recordBacklogRejection(op string, err error) {
	if err != ErrTooManyRequestsToUser || b.metrics == nil {
		return
	}
	b.incBacklogRejection(op)
}

func (b *Bank) incBacklogRejection(op string) {
	if b.metrics == nil {
		return
	}
	b.metrics.BacklogRejectionsTotal.WithLabelValues(op).Inc()
}

func validateAmount(amount int64, currency string) error {
	if amount < 0 {
		return ErrWrongArguments("amount must not be negative")
	}
	if currency == "" {
		return ErrWrongArguments("currency must not be empty")
	}
	return nil
}
