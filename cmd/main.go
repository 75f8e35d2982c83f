package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pinyin/internal/customdict"
	"pinyin/internal/tables"
	"pinyin/internal/translator"
)

const maxBatchLines = 1000

func main() {
	cfg := translator.DefaultConfig()
	if path := os.Getenv("PINYIN_CONFIG"); path != "" {
		var err error
		if cfg, err = translator.LoadConfig(path); err != nil {
			log.Fatalf("config error: %v", err)
		}
	}
	cfg.Redis.Addr = getenv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	dict := customdict.New(client)

	tr, err := translator.New(cfg, dict)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/translate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Pinyin string   `json:"pinyin"`
			Lines  []string `json:"lines"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (strings.TrimSpace(req.Pinyin) == "" && len(req.Lines) == 0) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
			return
		}
		if len(req.Lines) > maxBatchLines {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "too many lines"})
			return
		}
		if len(req.Lines) > 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"results": tr.TranslateBatch(req.Lines),
			})
			return
		}
		writeJSON(w, http.StatusOK, tr.TranslateLine(req.Pinyin))
	})

	mux.HandleFunc("/api/v1/custom-word", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{"words": tr.CustomWords()})
		case http.MethodPost:
			var req struct {
				Word   string `json:"word"`
				Pinyin string `json:"pinyin"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
				return
			}
			if err := tr.AddCustomWord(req.Word, req.Pinyin); err != nil {
				writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/api/v1/custom-word/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		word := strings.TrimPrefix(r.URL.Path, "/api/v1/custom-word/")
		if word == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "word is required"})
			return
		}
		if err := tr.RemoveCustomWord(word); err != nil {
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := getenv("HTTP_ADDR", ":8080")
	log.Printf("listening on %s (%s model)", addr, tr.Model())
	log.Fatal(http.ListenAndServe(addr, withRequestID(mux)))
}

// statusFor maps caller mistakes to 4xx and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, translator.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, translator.ErrInvalidPhrase),
		errors.Is(err, tables.ErrUnknownSyllable),
		errors.Is(err, tables.ErrNoReading):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		log.Printf("%s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}
