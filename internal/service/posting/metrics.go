package posting

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tinoosan/finledger/internal/errs"
)

var postingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "finledger",
		Name:      "postings_total",
		Help:      "Paired postings by kind, operation and outcome",
	},
	[]string{"kind", "op", "outcome"},
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrPartialPosting):
		return "partial"
	default:
		return "error"
	}
}
