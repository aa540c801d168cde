// Account handlers: CRUD, balance and balance reconciliation.

package httpapi

import (
	"net/http"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/reconcile"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	var req postAccountRequest
	if !decode(w, r, &req) {
		return
	}
	acc, err := s.accountSvc.Create(r.Context(), ledger.Account{
		Name:       req.Name,
		Kind:       ledger.AccountKind(req.Kind),
		Currency:   req.Currency,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

// GET /v1/accounts?kind=
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.accountSvc.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		if kind != "" && !strings.EqualFold(string(a.Kind), kind) {
			continue
		}
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	acc, err := s.accountSvc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// PATCH /v1/accounts/{id}
// Moving a card to another kind drops its billing days.
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchAccountRequest
	if !decode(w, r, &req) {
		return
	}
	acc, err := s.accountSvc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Currency != nil {
		acc.Currency = *req.Currency
	}
	if req.Kind != nil {
		acc.Kind = ledger.AccountKind(*req.Kind)
	}
	if req.ClosingDay != nil {
		acc.ClosingDay = req.ClosingDay
	}
	if req.DueDay != nil {
		acc.DueDay = req.DueDay
	}
	if !acc.IsCreditCard() {
		acc.ClosingDay, acc.DueDay = nil, nil
	}
	updated, err := s.accountSvc.Update(r.Context(), acc)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.accountSvc.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/accounts/{id}/balance?as_of=
func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	bal, err := s.accountSvc.Balance(r.Context(), id, asOf)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{
		AccountID:   id,
		AsOf:        asOf,
		Currency:    bal.Curr().Code(),
		AmountMinor: minorOf(bal),
		Amount:      bal.Decimal().String(),
	})
}

// POST /v1/accounts/{id}/reconcile {as_of, reported}
// as_of defaults to today.
func (s *Server) reconcileAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req reconcileBalanceRequest
	if !decode(w, r, &req) {
		return
	}
	rep, err := reconcile.ParseReported(req.Reported)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	asOf := req.AsOf
	if asOf == (civil.Date{}) {
		asOf = s.today()
	}
	res, err := s.accountSvc.ReconcileBalance(r.Context(), id, asOf, rep)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, reconcileResponse{AccountID: id, AsOf: asOf, Result: res})
}
