package api

import (
	"errors"

	"github.com/r3e-network/ledger-core/internal/apierrors"
	"github.com/r3e-network/ledger-core/internal/ledger"
)

// mapError translates a core sentinel error into the *apierrors.Error
// the HTTP layer responds with (SPEC_FULL.md §4.7/§7). subject is the user
// identifier the error concerns (for messages only); pass "" when there is
// none. The core package never imports net/http; this is the sole seam
// between the two.
func mapError(err error, subject string) *apierrors.Error {
	var wrongArgs *ledger.WrongArgumentsError
	if errors.As(err, &wrongArgs) {
		return apierrors.WrongArguments(wrongArgs.Reason)
	}

	switch {
	case errors.Is(err, ledger.ErrUserAlreadyExists):
		return apierrors.UserAlreadyExists(subject)
	case errors.Is(err, ledger.ErrUserDoesNotExist):
		return apierrors.UserDoesNotExist(subject)
	case errors.Is(err, ledger.ErrNotEnoughMoney):
		return apierrors.NotEnoughMoney()
	case errors.Is(err, ledger.ErrTooManyRequestsToUser):
		return apierrors.TooManyRequestsToUser(subject)
	case errors.Is(err, ledger.ErrSenderDoesNotExist):
		return apierrors.SenderDoesNotExist(subject)
	case errors.Is(err, ledger.ErrReceiverDoesNotExist):
		return apierrors.ReceiverDoesNotExist(subject)
	case errors.Is(err, ledger.ErrTooManyRequestsToSender):
		return apierrors.TooManyRequestsToSender(subject)
	case errors.Is(err, ledger.ErrTooManyRequestsToReceiver):
		return apierrors.TooManyRequestsToReceiver(subject)
	default:
		// ErrWorkerFault and any other unmapped core error: the handler
		// treats this as an internal error (500), not one of the nine
		// coded kinds.
		return nil
	}
}
