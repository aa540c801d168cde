package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// amountFor builds an amount in currency, falling back to the account's currency.
func (s *Server) amountFor(ctx context.Context, accountID uuid.UUID, currency string, minor int64) (money.Amount, error) {
	if currency == "" {
		acc, err := s.store.GetAccount(ctx, accountID)
		if errors.Is(err, errs.ErrNotFound) {
			return money.Amount{}, fmt.Errorf("%w: account %s does not exist", errs.ErrInvalid, accountID)
		}
		if err != nil {
			return money.Amount{}, err
		}
		currency = acc.Currency
	}
	amt, err := money.NewAmountFromMinorUnits(strings.ToUpper(currency), minor)
	if err != nil {
		return money.Amount{}, fmt.Errorf("%w: amount: %v", errs.ErrInvalid, err)
	}
	return amt, nil
}

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if !decode(w, r, &req) {
		return
	}
	amt, err := s.amountFor(r.Context(), req.AccountID, req.Currency, req.AmountMinor)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	saved, err := s.entrySvc.Create(r.Context(), ledger.Entry{
		Date:        req.Date,
		Description: req.Description,
		Amount:      amt,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Reconciled:  req.Reconciled,
	})
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toEntryResponse(saved))
}

// GET /v1/entries?account_id=&category_id=&from=&to=
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	var f ledger.EntryFilter
	q := r.URL.Query()
	for name, dst := range map[string]**uuid.UUID{"account_id": &f.AccountID, "category_id": &f.CategoryID} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "invalid "+name)
			return
		}
		*dst = &id
	}
	var err error
	if f.From, err = queryDate(r, "from"); err != nil {
		badRequest(w, err.Error())
		return
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		badRequest(w, err.Error())
		return
	}
	entries, err := s.entrySvc.List(r.Context(), f)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	e, err := s.entrySvc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(e))
}

// PATCH /v1/entries/{id}
// A body carrying only "reconciled" toggles the flag; anything else rewrites the entry.
func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchEntryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Reconciled != nil && req.Date == nil && req.Description == nil && req.AccountID == nil && req.AmountMinor == nil && !req.CategoryID.Set {
		e, err := s.entrySvc.SetReconciled(r.Context(), id, *req.Reconciled)
		if err != nil {
			s.writeServiceErr(w, r, err)
			return
		}
		toJSON(w, http.StatusOK, toEntryResponse(e))
		return
	}

	e, err := s.entrySvc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	currency := e.Amount.Curr().Code()
	if req.AccountID != nil && *req.AccountID != e.AccountID {
		e.AccountID = *req.AccountID
		currency = ""
	}
	minor := minorOf(e.Amount)
	if req.AmountMinor != nil {
		minor = *req.AmountMinor
	}
	if e.Amount, err = s.amountFor(r.Context(), e.AccountID, currency, minor); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.CategoryID.Set {
		e.CategoryID = req.CategoryID.Value
	}
	if req.Reconciled != nil {
		e.Reconciled = *req.Reconciled
	}
	saved, err := s.entrySvc.Update(r.Context(), e)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(saved))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.entrySvc.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
