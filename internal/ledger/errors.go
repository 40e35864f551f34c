package ledger

import "errors"

// Sentinel errors returned by the core. The API layer (internal/api) maps
// these to internal/apierrors codes and HTTP statuses; the core itself has
// no notion of HTTP.
var (
	ErrUserAlreadyExists         = errors.New("user already exists")
	ErrUserDoesNotExist          = errors.New("user does not exist")
	ErrNotEnoughMoney            = errors.New("not enough money")
	ErrTooManyRequestsToUser     = errors.New("too many requests to user")
	ErrSenderDoesNotExist        = errors.New("sender does not exist")
	ErrReceiverDoesNotExist      = errors.New("receiver does not exist")
	ErrTooManyRequestsToSender   = errors.New("too many requests to sender")
	ErrTooManyRequestsToReceiver = errors.New("too many requests to receiver")

	// ErrWorkerFault is returned to a caller whose request was in flight
	// when its Worker panicked. The Worker itself is non-fatal to the
	// system: the Reaper cleans up and the next request starts fresh.
	ErrWorkerFault = errors.New("worker fault")
)

// WrongArgumentsError reports a caller-supplied value that fails basic
// validation, carrying the reason so the API layer can surface a useful
// message rather than a bare sentinel.
type WrongArgumentsError struct {
	Reason string
}

func (e *WrongArgumentsError) Error() string {
	return "wrong arguments: " + e.Reason
}

// ErrWrongArguments constructs a WrongArgumentsError for reason.
func ErrWrongArguments(reason string) error {
	return &WrongArgumentsError{Reason: reason}
}

// IsWrongArguments reports whether err is a WrongArgumentsError.
func IsWrongArguments(err error) bool {
	var target *WrongArgumentsError
	return errors.As(err, &target)
}
