package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/r3e-network/ledger-core/internal/apierrors"
	"github.com/r3e-network/ledger-core/internal/ledger"
	"github.com/r3e-network/ledger-core/internal/logging"
)

// Handler wires the ledger.Bank to HTTP, per SPEC_FULL.md §4.7's route
// table. Every handler is a thin decode/validate/call/encode shim; all
// control-plane logic lives in internal/ledger.
type Handler struct {
	bank   *ledger.Bank
	logger *logging.Logger
}

func NewHandler(bank *ledger.Bank, logger *logging.Logger) *Handler {
	return &Handler{bank: bank, logger: logger}
}

type createUserRequest struct {
	User string `json:"user"`
}

type amountRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

type transferRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type transferResponse struct {
	FromBalance string `json:"from_balance"`
	ToBalance   string `json:"to_balance"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.User == "" {
		writeCodedError(w, apierrors.WrongArguments("user must not be empty"))
		return
	}

	if err := h.bank.CreateUser(req.User); err != nil {
		h.writeError(w, err, req.User)
		return
	}
	writeJSON(w, http.StatusCreated, struct{}{})
}

// Deposit handles POST /users/{user}/deposits.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := parseMinorUnits(req.Amount)
	if err != nil {
		h.writeError(w, err, user)
		return
	}

	res, err := h.bank.Deposit(r.Context(), user, amount, req.Currency)
	if err != nil {
		h.writeError(w, err, user)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: formatMinorUnits(res.Balance)})
}

// Withdraw handles POST /users/{user}/withdrawals.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := parseMinorUnits(req.Amount)
	if err != nil {
		h.writeError(w, err, user)
		return
	}

	res, err := h.bank.Withdraw(r.Context(), user, amount, req.Currency)
	if err != nil {
		h.writeError(w, err, user)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: formatMinorUnits(res.Balance)})
}

// GetBalance handles GET /users/{user}/balance?currency=....
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		writeCodedError(w, apierrors.WrongArguments("currency query parameter is required"))
		return
	}

	res, err := h.bank.GetBalance(r.Context(), user, currency)
	if err != nil {
		h.writeError(w, err, user)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: formatMinorUnits(res.Balance)})
}

// Send handles POST /transfers.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeCodedError(w, apierrors.WrongArguments("from and to must not be empty"))
		return
	}

	amount, err := parseMinorUnits(req.Amount)
	if err != nil {
		h.writeError(w, err, req.From)
		return
	}

	res, err := h.bank.Send(r.Context(), req.From, req.To, amount, req.Currency)
	if err != nil {
		subject := req.From
		switch err {
		case ledger.ErrReceiverDoesNotExist, ledger.ErrTooManyRequestsToReceiver:
			subject = req.To
		}
		h.writeError(w, err, subject)
		return
	}
	writeJSON(w, http.StatusOK, transferResponse{
		FromBalance: formatMinorUnits(res.FromBalance),
		ToBalance:   formatMinorUnits(res.ToBalance),
	})
}

// Healthz handles GET /healthz: a liveness probe with no dependency checks,
// matching SPEC_FULL.md §5's framing of the HTTP layer as a synchronous
// passthrough with no suspension points of its own.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, subject string) {
	coded := mapError(err, subject)
	if coded == nil {
		if h.logger != nil {
			h.logger.WithError(err).Error("unmapped core error")
		}
		writeJSON(w, http.StatusInternalServerError, struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}{Code: "INTERNAL", Message: "internal server error"})
		return
	}
	writeCodedError(w, coded)
}

func writeCodedError(w http.ResponseWriter, coded *apierrors.Error) {
	writeJSON(w, apierrors.HTTPStatus(coded), struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{Code: string(coded.Code), Message: coded.Message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeCodedError(w, apierrors.WrongArguments("malformed JSON body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
