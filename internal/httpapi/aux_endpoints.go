package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/tinoosan/finledger/internal/dictionary"
	"github.com/tinoosan/finledger/internal/ledger"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// If the idempotency store implements Ready, call it with the same short timeout.
	type readyIf interface{ Ready(context.Context) error }
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("store not ready", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if rc, ok := s.idem.(readyIf); ok {
		if err := rc.Ready(ctx); err != nil {
			s.log.Warn("idempotency store not ready", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

type categoryResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Type     ledger.CategoryType `json:"type"`
	Reserved bool                `json:"reserved"`
}

// GET /v1/categories?type=
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	typ := ledger.CategoryType(r.URL.Query().Get("type"))
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		if typ != "" && c.Type != typ {
			continue
		}
		out = append(out, categoryResponse{
			ID:       c.ID.String(),
			Name:     c.Name,
			Type:     c.Type,
			Reserved: c.Type == ledger.CategoryTypeSystem && dictionary.IsReserved(c.Name),
		})
	}
	toJSON(w, http.StatusOK, out)
}

// GET /v1/dictionary/categories?type=
func (s *Server) getCategoriesDictionary(w http.ResponseWriter, r *http.Request) {
	var t *ledger.CategoryType
	if ts := r.URL.Query().Get("type"); ts != "" {
		tt := ledger.CategoryType(ts)
		t = &tt
	}
	types := []ledger.CategoryType{ledger.CategoryTypeSystem, ledger.CategoryTypeIncome, ledger.CategoryTypeExpense}
	type typeItem struct {
		Type       ledger.CategoryType      `json:"type"`
		Categories []dictionary.CategoryDef `json:"categories"`
	}
	out := struct {
		Items []typeItem `json:"items"`
	}{Items: []typeItem{}}
	for _, typ := range types {
		if t != nil && *t != typ {
			continue
		}
		out.Items = append(out.Items, typeItem{Type: typ, Categories: dictionary.CategoriesFor(&typ)})
	}
	toJSON(w, http.StatusOK, out)
}
