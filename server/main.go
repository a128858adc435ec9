package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/engine"
	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/store"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate bool
	for _, a := range os.Args[1:] {
		if a == "--migrate" {
			migrate = true
		}
	}

	port := getenv("PORT", "8080")
	targetScore := atoiDef(os.Getenv("TARGET_SCORE"), engine.DefaultTargetScore)
	origins := splitList(os.Getenv("ORIGIN_ALLOWLIST"))

	// The archive is optional; without DATABASE_URL finished matches are
	// only logged.
	var db *store.DB
	if dsn := getenv("DATABASE_URL", ""); dsn != "" {
		p, err := store.Open(dsn)
		if err != nil {
			log.Fatal(err)
		}
		db = p
		defer db.Close(context.Background())

		if migrate || asBool(os.Getenv("AUTO_MIGRATE")) {
			if err := store.Migrate(context.Background(), db); err != nil {
				log.Fatal(err)
			}
			log.Println("migrated")
		}
		if migrate {
			return
		}
	} else if migrate {
		log.Fatal("--migrate requires DATABASE_URL")
	}

	h := NewHub(db, targetScore, origins)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Router(h, db),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go watchSignals(srv)

	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	log.Println("shut down")
}

func watchSignals(srv *http.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
