package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	once sync.Once

	// RequestsTotal считает команды бота по результату.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagger_bot",
		Name:      "requests_total",
		Help:      "Total number of bot commands handled, labeled by command and result.",
	}, []string{"command", "result"})

	// RemoteDurationSeconds время одного шага обращения к удалённому тэггеру.
	RemoteDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tagger_bot",
		Name:      "remote_duration_seconds",
		Help:      "Duration of a single call to the remote tagger, labeled by step.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"step"})

	// RemoteErrorsTotal считает неудачные шаги обращения к удалённому тэггеру.
	RemoteErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tagger_bot",
		Name:      "remote_errors_total",
		Help:      "Total number of failed calls to the remote tagger, labeled by step.",
	}, []string{"step"})
)

// Register регистрирует метрики в реестре Prometheus по умолчанию.
// Повторные вызовы безопасны.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RemoteDurationSeconds,
			RemoteErrorsTotal,
		)
	})
}

// ObserveRemote записывает длительность шага и, если он неудачен, ошибку.
func ObserveRemote(step string, started time.Time, err error) {
	RemoteDurationSeconds.WithLabelValues(step).Observe(time.Since(started).Seconds())
	if err != nil {
		RemoteErrorsTotal.WithLabelValues(step).Inc()
	}
}

// Serve отдаёт /metrics на addr до отмены ctx.
func Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}()

	log.Info("Starting metrics server", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
