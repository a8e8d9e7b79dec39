package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/terrain-erosion/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter отдает метрики реестра по HTTP на /metrics
type Exporter struct {
	server *http.Server
	done   chan struct{}
}

// NewExporter создает экспортер, но не запускает HTTP-сервер
func NewExporter(addr string, gatherer prometheus.Gatherer) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Exporter{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan struct{}),
	}
}

// Handler возвращает HTTP-обработчик (удобно в тестах)
func (e *Exporter) Handler() http.Handler {
	return e.server.Handler
}

// StartHTTP запускает HTTP-сервер в отдельной горутине
func (e *Exporter) StartHTTP() {
	go func() {
		defer close(e.done)
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
}

// Stop останавливает HTTP-сервер и ждет завершения горутины
func (e *Exporter) Stop(ctx context.Context) error {
	err := e.server.Shutdown(ctx)
	<-e.done
	return err
}
