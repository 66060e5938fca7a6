package utilities

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

// ErrorBody is the uniform failure envelope returned by every handler.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// WriteUnauthorized writes a 401 with the bearer challenge header.
func WriteUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteError(w, http.StatusUnauthorized, msg)
}

// Params holds string request parameters. A key mapped to nil was sent as JSON null.
type Params map[string]*string

// Get returns the value for key and whether it was present and non-null.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Value returns the value for key or "".
func (p Params) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Ptr returns the value for key, or nil when it is absent or null.
func (p Params) Ptr(key string) *string {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	return &v
}

// ReadParams reads a flat JSON object of strings when the request is JSON,
// and the form and query values otherwise.
func ReadParams(r *http.Request) (Params, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		out := Params{}
		if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return out, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	out := Params{}
	for k, vs := range r.Form {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		out[k] = &v
	}
	return out, nil
}
