package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tonttery/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerLotteryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/v1/clients/{clientID}", handler.GetClient)
	mux.HandleFunc("GET /api/v1/clients/{clientID}/lotteries", handler.ListClientLotteries)
	mux.HandleFunc("GET /api/v1/lotteries", handler.ListLotteries)
	mux.HandleFunc("GET /api/v1/lotteries/{lotteryID}", handler.GetLottery)
	mux.HandleFunc("GET /api/v1/lotteries/{lotteryID}/clients", handler.ListLotteryClients)
	mux.HandleFunc("POST /api/v1/lotteries/{lotteryID}/clients/{clientID}", handler.JoinLottery)
	mux.HandleFunc("DELETE /api/v1/lotteries/{lotteryID}/clients/{clientID}", handler.CancelLottery)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/{job}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunJob)))
}
