package api

import (
	"net/http"
	"time"

	_ "github.com/AlexZinkM/nft-marketplace/docs"
	"github.com/AlexZinkM/nft-marketplace/internal/handler"
	"github.com/AlexZinkM/nft-marketplace/internal/logging"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler, viewHandler *handler.ViewHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Views
	mux.HandleFunc("/{$}", viewHandler.Marketplace)
	mux.HandleFunc("/mint", viewHandler.Mint)

	// Wallet/contract bridge
	mux.HandleFunc("/api/wallet/connect", walletHandler.Connect)
	mux.HandleFunc("/api/contract", walletHandler.Contract)
	mux.HandleFunc("/health", handler.Health)

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Everything else
	mux.HandleFunc("/", handler.NotFound)

	return logRequests(mux, logging.For(logger, logging.ComponentServer))
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func logRequests(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", srw.status),
			zap.Int("bytes", srw.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
