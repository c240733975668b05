// Package server exposes a cache over HTTP.
//
//	GET    /{key}        200 {"key":..,"value":..} or 404
//	PUT    /{key}        204; body {"value":..,"ttl":"30s"}, empty body stores the key as its own value
//	DELETE /{key}        204
//	GET    /debug/keys   200 {"keys":[..]} in MRU -> LRU order
//	GET    /debug/stats  200 cache counters
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"lrucache/internal/cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Store is the cache surface the handlers need.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Keys() []string
	Stats() cache.Stats
}

type handler struct {
	store      Store
	defaultTTL time.Duration
}

// New returns the HTTP handler for store. defaultTTL applies to PUTs without
// an explicit ttl; zero means entries never expire.
func New(store Store, defaultTTL time.Duration, logger zerolog.Logger) http.Handler {
	h := &handler{store: store, defaultTTL: defaultTTL}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{key}", h.get)
	mux.HandleFunc("PUT /{key}", h.put)
	mux.HandleFunc("DELETE /{key}", h.delete)
	mux.HandleFunc("GET /debug/keys", h.keys)
	mux.HandleFunc("GET /debug/stats", h.stats)

	var next http.Handler = mux
	next = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(next)
	next = hlog.NewHandler(logger)(next)
	return next
}

type valueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	v, ok := h.store.Get(key)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	writeJSON(w, r, http.StatusOK, valueResponse{Key: key, Value: string(v)})
}

func (h *handler) put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "read body: " + err.Error()})
		return
	}

	value, ttl, err := h.parsePut(key, body)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.store.Set(key, value, ttl); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parsePut extracts the value and ttl from a PUT body. String values are
// unescaped; any other JSON value is stored as its raw text.
func (h *handler) parsePut(key string, body []byte) ([]byte, time.Duration, error) {
	if len(body) == 0 {
		return []byte(key), h.defaultTTL, nil
	}
	if err := singleObject(body); err != nil {
		return nil, 0, err
	}

	raw, typ, _, err := jsonparser.Get(body, "value")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, 0, errors.New(`body must contain "value"`)
		}
		return nil, 0, fmt.Errorf("malformed body: %w", err)
	}

	var value []byte
	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("malformed value: %w", err)
		}
		value = []byte(s)
	case jsonparser.Null:
		return nil, 0, errors.New("value must not be null")
	default:
		value = raw
	}

	ttl := h.defaultTTL
	s, err := jsonparser.GetString(body, "ttl")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
	case err != nil:
		return nil, 0, fmt.Errorf("ttl must be a duration string: %w", err)
	default:
		ttl, err = time.ParseDuration(s)
		if err != nil {
			return nil, 0, fmt.Errorf("ttl: %w", err)
		}
		if ttl < 0 {
			return nil, 0, errors.New("ttl must not be negative")
		}
	}
	return value, ttl, nil
}

// singleObject rejects bodies that are not exactly one well-formed JSON
// object, optionally surrounded by whitespace.
func singleObject(body []byte) error {
	if !json.Valid(body) {
		return errors.New("malformed body: invalid JSON")
	}
	_, typ, end, err := jsonparser.Get(body)
	if err != nil {
		return fmt.Errorf("malformed body: %w", err)
	}
	if typ != jsonparser.Object {
		return errors.New("body must be a JSON object")
	}
	if len(bytes.TrimSpace(body[end:])) != 0 {
		return errors.New("malformed body: trailing data after object")
	}
	return nil
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("key")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) keys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, struct {
		Keys []string `json:"keys"`
	}{Keys: h.store.Keys()})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.store.Stats())
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cache.ErrClosed) {
		writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("store operation failed")
	writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("write response")
	}
}
