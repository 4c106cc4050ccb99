package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/app"
	intconfig "zheliyou/internal/config"
	router "zheliyou/internal/http"
)

func main() {
	intconfig.LoadDotEnv()
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	wire, err := app.NewWire(bootCtx, env)
	bootCancel()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer wire.Close()

	r := router.NewRouter(wire)

	// No WriteTimeout: realtime streams stay open for as long as the client listens.
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s (backend=%s)", env.AppAddr, env.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped.")
}
