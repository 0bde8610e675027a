// Package middleware wraps the route handlers with the cross-cutting request
// pipeline: trace id injection, bearer auth, per-IP rate limiting and
// request metrics.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/anmkhn/tradedoc-qa/internal/handlers"
	"github.com/anmkhn/tradedoc-qa/internal/metrics"
	"github.com/anmkhn/tradedoc-qa/pkg/logging"
)

var (
	HealthHandler          = Wrap(handlers.HealthHandler)
	PostIngestHandler      = Wrap(handlers.PostIngestHandler)
	PostQueryHandler       = Wrap(handlers.PostQueryHandler)
	GetFilesHandler        = Wrap(handlers.GetFilesHandler)
	PostFilterHandler      = Wrap(handlers.PostFilterHandler)
	PostCompareHandler     = Wrap(handlers.PostCompareHandler)
	PostTeardownHandler    = Wrap(handlers.PostTeardownHandler)
	PostGuidelinesHandler  = Wrap(handlers.PostGuidelinesHandler)
	ClearGuidelinesHandler = Wrap(handlers.ClearGuidelinesHandler)
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logging.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logging.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	return re
}
