package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-pokestore.git/internal/cart"
	"github.com/ariefcatur/go-pokestore.git/internal/catalog"
	"github.com/ariefcatur/go-pokestore.git/internal/config"
	"github.com/ariefcatur/go-pokestore.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-pokestore.git/internal/kafka"
	"github.com/ariefcatur/go-pokestore.git/internal/mail"
	"github.com/ariefcatur/go-pokestore.git/internal/orders"
	"github.com/ariefcatur/go-pokestore.git/internal/payments"
	"github.com/ariefcatur/go-pokestore.git/internal/postgres"
	"github.com/ariefcatur/go-pokestore.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis (cart per session)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (pengumuman order.created)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prod.Start(ctx)

	router := httpx.NewRouter()
	sh := &httpx.ShopHandler{
		Catalog: &catalog.Repo{DB: db},
		Ledger:  &orders.Repo{DB: db},
		Carts:   &cart.RedisStore{RDB: rdb},
		Mailer: &mail.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			To:       cfg.StoreEmail,
		},
		Invoicer: payments.NewClient(cfg.NowPaymentsURL, cfg.NowPaymentsAPIKey, cfg.PaymentTimeout),
		Producer: prod,
		Service:  cfg.ServiceName,
		BaseURL:  cfg.BaseURL,
	}
	sh.Register(router)

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
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
