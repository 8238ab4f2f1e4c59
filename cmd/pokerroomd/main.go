package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vctt94/bisonbotkit/logging"

	"github.com/ethanbrook-dev/pokerroom/pkg/poker"
	"github.com/ethanbrook-dev/pokerroom/pkg/server"
	"github.com/ethanbrook-dev/pokerroom/pkg/ws"
)

func main() {
	var (
		addr          string
		dbPath        string
		dealerURL     string
		seed          int64
		startingChips int64
		ante          int64
		betStep       int64
		settleDelayMs int
		graceMs       int
		debugLevel    string
	)
	flag.StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite ledger file (created if missing)")
	flag.StringVar(&dealerURL, "dealerurl", "", "Base URL of a deckofcardsapi-compatible deck service (empty = in-process decks)")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for in-process decks (0 = random)")
	flag.Int64Var(&startingChips, "startingchips", poker.DefaultStartingChips, "Chips each player starts with")
	flag.Int64Var(&ante, "ante", poker.DefaultAnte, "Ante seeding the first betting loop")
	flag.Int64Var(&betStep, "betstep", poker.DefaultBetStep, "Raise size granularity")
	flag.IntVar(&settleDelayMs, "settledelayms", 3000, "Delay between hands in milliseconds")
	flag.IntVar(&graceMs, "gracems", 5000, "Grace period before a hostless room is destroyed, in milliseconds")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "pokerroom.sqlite")
	}

	// Logging backend
	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: debugLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log := logBackend.Logger("SRVR")

	ledger, err := server.NewSQLiteLedger(dbPath, logBackend.Logger("LDGR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open ledger: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	var dealer poker.Dealer
	if dealerURL != "" {
		dealer = poker.NewHTTPDealer(dealerURL, poker.DefaultDealTimeout)
		log.Infof("Using deck service at %s", dealerURL)
	} else {
		dealer = poker.NewLocalDealer(seed)
		log.Infof("Using in-process decks")
	}

	events := server.NewEventProcessor(logBackend.Logger("EVNT"), nil, 1024, 8)
	registry := server.NewRegistry(server.RegistryConfig{
		Log:           logBackend.Logger("ROOM"),
		Dealer:        dealer,
		Ledger:        ledger,
		Events:        events,
		StartingChips: startingChips,
		Ante:          ante,
		BetStep:       betStep,
		SettleDelay:   time.Duration(settleDelayMs) * time.Millisecond,
		HostGrace:     time.Duration(graceMs) * time.Millisecond,
	})

	hub := ws.NewHub(logBackend.Logger("WSCK"), registry)
	events.SetNotifier(hub)
	events.Start()
	defer events.Stop()
	defer registry.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok rooms=%d\n", registry.RoomCount())
	})

	httpSrv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Infof("Shutting down")
		httpSrv.Close()
	}()

	log.Infof("Listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		os.Exit(1)
	}
}
