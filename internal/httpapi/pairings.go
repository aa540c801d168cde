// Transfer and invoice payment handlers. Both write two entries through the posting service.

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/service/posting"
)

// postingRequest converts the body; the amount takes the source account's currency.
func (s *Server) postingRequest(ctx context.Context, req pairingRequest) (posting.Request, error) {
	amt, err := s.amountFor(ctx, req.SourceAccountID, "", req.AmountMinor)
	if err != nil {
		return posting.Request{}, err
	}
	return posting.Request{
		Date:                 req.Date,
		Description:          req.Description,
		Amount:               amt,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Reconciled:           req.Reconciled,
	}, nil
}

// accountQuery parses the optional ?account_id= filter.
func accountQuery(r *http.Request) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("account_id"))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// Transfers

func (s *Server) postTransfer(w http.ResponseWriter, r *http.Request) {
	var body pairingRequest
	if !decode(w, r, &body) {
		return
	}
	req, err := s.postingRequest(r.Context(), body)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	t, err := s.postingSvc.CreateTransfer(r.Context(), req)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, fromTransfer(t))
}

func (s *Server) listTransfers(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountQuery(r)
	if !ok {
		badRequest(w, "invalid account_id")
		return
	}
	ts, err := s.postingSvc.ListTransfers(r.Context(), accountID)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]pairingResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, fromTransfer(t))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	t, err := s.postingSvc.GetTransfer(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, fromTransfer(t))
}

// PUT /v1/transfers/{id} rewrites both legs.
func (s *Server) putTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var body pairingRequest
	if !decode(w, r, &body) {
		return
	}
	req, err := s.postingRequest(r.Context(), body)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	t, err := s.postingSvc.UpdateTransfer(r.Context(), id, req)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, fromTransfer(t))
}

func (s *Server) deleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.postingSvc.DeleteTransfer(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invoice payments

func (s *Server) postInvoicePayment(w http.ResponseWriter, r *http.Request) {
	var body pairingRequest
	if !decode(w, r, &body) {
		return
	}
	req, err := s.postingRequest(r.Context(), body)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	p, err := s.postingSvc.CreateInvoicePayment(r.Context(), req)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, fromPayment(p))
}

func (s *Server) listInvoicePayments(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountQuery(r)
	if !ok {
		badRequest(w, "invalid account_id")
		return
	}
	ps, err := s.postingSvc.ListInvoicePayments(r.Context(), accountID)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]pairingResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, fromPayment(p))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	p, err := s.postingSvc.GetInvoicePayment(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, fromPayment(p))
}

func (s *Server) putInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var body pairingRequest
	if !decode(w, r, &body) {
		return
	}
	req, err := s.postingRequest(r.Context(), body)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	p, err := s.postingSvc.UpdateInvoicePayment(r.Context(), id, req)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, fromPayment(p))
}

func (s *Server) deleteInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.postingSvc.DeleteInvoicePayment(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
