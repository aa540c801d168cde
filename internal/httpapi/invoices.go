package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/billing"
	"github.com/tinoosan/finledger/internal/reconcile"
	"github.com/tinoosan/finledger/internal/service/invoice"
)

const defaultHistory = 12

type invoiceGetter func(ctx context.Context, id uuid.UUID, today civil.Date) (invoice.Invoice, error)

func (s *Server) currentInvoice(w http.ResponseWriter, r *http.Request) {
	s.serveInvoice(w, r, s.invoiceSvc.Current)
}

func (s *Server) openInvoice(w http.ResponseWriter, r *http.Request) {
	s.serveInvoice(w, r, s.invoiceSvc.Open)
}

// GET /v1/accounts/{id}/invoices/{period}
func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	s.serveInvoice(w, r, func(ctx context.Context, id uuid.UUID, today civil.Date) (invoice.Invoice, error) {
		return s.invoiceSvc.ForPeriod(ctx, id, period, today)
	})
}

func (s *Server) serveInvoice(w http.ResponseWriter, r *http.Request, get invoiceGetter) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	today, err := s.todayParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	inv, err := get(r.Context(), id, today)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// GET /v1/accounts/{id}/invoices?today=&count=
// Newest first, starting with the current invoice.
func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	today, err := s.todayParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	n := defaultHistory
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		if n, err = strconv.Atoi(raw); err != nil {
			badRequest(w, "invalid count")
			return
		}
	}
	invs, err := s.invoiceSvc.History(r.Context(), id, today, n)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvoiceResponse(inv))
	}
	toJSON(w, http.StatusOK, out)
}

// POST /v1/accounts/{id}/invoices/{period}/reconcile {reported}
// reported is the amount owed as printed on the statement.
func (s *Server) reconcileInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	today, err := s.todayParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req reconcileInvoiceRequest
	if !decode(w, r, &req) {
		return
	}
	rep, err := reconcile.ParseReported(req.Reported)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rec, err := s.invoiceSvc.Reconcile(r.Context(), id, chi.URLParam(r, "period"), today, rep)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, invoiceReconciliationResponse{Invoice: toInvoiceResponse(rec.Invoice), Result: rec.Result})
}

// GET /v1/cycles?closing_day=&due_day=&reference=
// Previews the current cycle of a configuration before an account exists.
func (s *Server) getCycle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	closing, err := strconv.Atoi(q.Get("closing_day"))
	if err != nil {
		badRequest(w, "invalid closing_day")
		return
	}
	due, err := strconv.Atoi(q.Get("due_day"))
	if err != nil {
		badRequest(w, "invalid due_day")
		return
	}
	ref, err := queryDate(r, "reference")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	reference := s.today()
	if ref != nil {
		reference = *ref
	}
	c, err := billing.ComputeCycle(closing, due, reference)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, cycleResponse{Cycle: c, Period: c.Key()})
}
