// Package httpapi wires the HTTP surface of the household ledger.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/idempotency"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/entry"
	"github.com/tinoosan/finledger/internal/service/invoice"
	"github.com/tinoosan/finledger/internal/service/posting"
)

// Store is the storage surface the HTTP layer composes services from.
type Store interface {
	account.Repo
	account.Writer
	entry.Repo
	entry.Writer
	ListCategories(ctx context.Context) ([]ledger.Category, error)
	Ping(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
	store      Store
	accountSvc account.Service
	entrySvc   entry.Service
	invoiceSvc invoice.Service
	postingSvc posting.Service
	idem       idempotency.Store
	log        *slog.Logger
	rt         *chi.Mux

	today     func() civil.Date
	origins   []string
	auth      func(http.Handler) http.Handler
	accountTx account.BeginFunc
}

// Option configures the server.
type Option func(*Server)

// WithClock overrides the source of "today" used when requests omit a reference date.
func WithClock(today func() civil.Date) Option { return func(s *Server) { s.today = today } }

// WithCORS sets the allowed browser origins.
func WithCORS(origins []string) Option { return func(s *Server) { s.origins = origins } }

// WithJWT enforces HS256 bearer tokens. An empty secret leaves the API open.
func WithJWT(secret, issuer, audience string) Option {
	return func(s *Server) { s.auth = authJWT(secret, issuer, audience) }
}

// WithAccountTx lets account updates re-index period keys inside one store transaction.
func WithAccountTx(b account.BeginFunc) Option { return func(s *Server) { s.accountTx = b } }

// New constructs the HTTP server with routes and middleware.
// postings is built by the caller so it can bind the store's transactions.
func New(store Store, postings posting.Service, idem idempotency.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:      store,
		entrySvc:   entry.New(store, store),
		invoiceSvc: invoice.New(store),
		postingSvc: postings,
		idem:       idem,
		log:        logger,
		rt:         chi.NewRouter(),
		today:      func() civil.Date { return civil.DateOf(time.Now()) },
		origins:    []string{"*"},
	}
	for _, o := range opts {
		o(s)
	}
	accountOpts := []account.Option{account.WithLogger(logger)}
	if s.accountTx != nil {
		accountOpts = append(accountOpts, account.WithTx(s.accountTx))
	}
	s.accountSvc = account.New(store, store, accountOpts...)
	s.rt.Use(chimw.RequestID)
	s.rt.Use(requestLogger(logger))
	s.rt.Use(recoverer(logger))
	s.rt.Use(metricsMiddleware)
	s.rt.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", replayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.auth != nil {
		s.rt.Use(s.auth)
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts
	s.rt.Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Patch("/v1/accounts/{id}", s.updateAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	s.rt.Get("/v1/accounts/{id}/balance", s.getAccountBalance)
	s.rt.Post("/v1/accounts/{id}/reconcile", s.reconcileAccount)
	// Invoices
	s.rt.Get("/v1/accounts/{id}/invoices", s.listInvoices)
	s.rt.Get("/v1/accounts/{id}/invoices/current", s.currentInvoice)
	s.rt.Get("/v1/accounts/{id}/invoices/open", s.openInvoice)
	s.rt.Get("/v1/accounts/{id}/invoices/{period}", s.getInvoice)
	s.rt.Post("/v1/accounts/{id}/invoices/{period}/reconcile", s.reconcileInvoice)
	s.rt.Get("/v1/cycles", s.getCycle)
	// Entries
	s.rt.With(s.idempotent).Post("/v1/entries", s.postEntry)
	s.rt.Get("/v1/entries", s.listEntries)
	s.rt.Get("/v1/entries/{id}", s.getEntry)
	s.rt.Patch("/v1/entries/{id}", s.updateEntry)
	s.rt.Delete("/v1/entries/{id}", s.deleteEntry)
	// Transfers
	s.rt.With(s.idempotent).Post("/v1/transfers", s.postTransfer)
	s.rt.Get("/v1/transfers", s.listTransfers)
	s.rt.Get("/v1/transfers/{id}", s.getTransfer)
	s.rt.Put("/v1/transfers/{id}", s.putTransfer)
	s.rt.Delete("/v1/transfers/{id}", s.deleteTransfer)
	// Invoice payments
	s.rt.With(s.idempotent).Post("/v1/invoice-payments", s.postInvoicePayment)
	s.rt.Get("/v1/invoice-payments", s.listInvoicePayments)
	s.rt.Get("/v1/invoice-payments/{id}", s.getInvoicePayment)
	s.rt.Put("/v1/invoice-payments/{id}", s.putInvoicePayment)
	s.rt.Delete("/v1/invoice-payments/{id}", s.deleteInvoicePayment)
	// Categories
	s.rt.Get("/v1/categories", s.listCategories)
	s.rt.Get("/v1/dictionary/categories", s.getCategoriesDictionary)
	// Health (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
