package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/harshsindhu0408/beauty-storefront/internal/audit"
	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/cart"
	"github.com/harshsindhu0408/beauty-storefront/internal/checkout"
	"github.com/harshsindhu0408/beauty-storefront/internal/config"
	"github.com/harshsindhu0408/beauty-storefront/internal/events"
	"github.com/harshsindhu0408/beauty-storefront/internal/httpx"
	"github.com/harshsindhu0408/beauty-storefront/internal/payment"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB (payment verification audit log)
	db, err := audit.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	auditRepo := &audit.Repo{DB: db}

	// Redis session store
	rdb := session.NewRedisClient(cfg.RedisAddr)
	defer rdb.Close()
	sessions := session.NewRedisStore(rdb)

	// Kafka producer (storefront activity events)
	prod := events.NewProducer(cfg.KafkaBrokers, events.TopicActivity, 1024)
	prod.Start(ctx)

	// Remote API adapter; a 401 tears the server-side session down before the
	// handler layer clears the cookie.
	carts := cart.NewRegistry()
	api := backend.NewClient(cfg.BackendBaseURL, func(ctx context.Context, token string) {
		if err := sessions.Clear(ctx, token); err != nil {
			log.Printf("warn: session teardown: %v", err)
		}
		carts.Drop(token)
	})

	orch := checkout.NewOrchestrator(api, sessions, prod, cfg.ServiceName)
	verifier := payment.NewVerifier(api, sessions, auditRepo, prod, cfg.ServiceName)

	cartH := &httpx.CartHandler{Backend: api, Carts: carts, Sessions: sessions}
	checkoutH := &httpx.CheckoutHandler{Orch: orch, Cart: cartH}
	paymentH := &httpx.PaymentHandler{Verifier: verifier}
	accountH := &httpx.AccountHandler{Backend: api, Audit: auditRepo}
	authH := &httpx.AuthHandler{Backend: api, Sessions: sessions}

	router := httpx.NewRouter()
	authH.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.Guard)
		cartH.Register(r)
		checkoutH.Register(r)
		paymentH.Register(r)
		accountH.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
