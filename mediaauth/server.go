package mediaauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

// Set a Decoder instance as a package global, because it caches
// meta-data about structs, and an instance can be shared safely.
var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// DefaultStreamPath is the redemption endpoint path embedded in issued URLs.
const DefaultStreamPath = "/media/stream"

// MediaServer is the HTTP boundary of the media access protocol.
type MediaServer struct {
	Service MediaService

	// StreamPath overrides DefaultStreamPath in issued capability URLs.
	StreamPath string
}

type signQuery struct {
	Mint             string `schema:"mint"`
	Wallet           string `schema:"wallet"`
	Signature        string `schema:"sig"`
	Message          string `schema:"msg"`
	AcceptCollection bool   `schema:"acceptCollection"`
}

type signResult struct {
	OK        bool   `json:"ok"`
	SignedURL string `json:"signedUrl,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Scope     string `json:"scope,omitempty"`
	Error     string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func signErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotHolder):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrMalformedMessage),
		errors.Is(err, ErrIntentExpired),
		errors.Is(err, ErrBadSignatureEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SignHandler serves GET /media/sign.
//
// Credentials are read from the X-Wallet, X-Signature and X-Message headers
// when present, falling back to the wallet, sig and msg query parameters.
func (s MediaServer) SignHandler(w http.ResponseWriter, r *http.Request) {
	var q signQuery

	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, signResult{Error: err.Error()})
		return
	}

	if v := strings.TrimSpace(r.Header.Get("X-Wallet")); v != "" {
		q.Wallet = v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Signature")); v != "" {
		q.Signature = v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Message")); v != "" {
		q.Message = v
	}

	response, err := s.Service.SignHandler(r.Context(), SignRequest{
		Mint:             strings.TrimSpace(q.Mint),
		Wallet:           strings.TrimSpace(q.Wallet),
		Signature:        strings.TrimSpace(q.Signature),
		Message:          strings.TrimSpace(q.Message),
		AcceptCollection: q.AcceptCollection,
	})
	if err != nil {
		writeJSON(w, signErrorStatus(err), signResult{Error: err.Error()})
		return
	}

	capability := response.Capability

	writeJSON(w, http.StatusOK, signResult{
		OK:        true,
		SignedURL: s.signedURL(r, capability),
		Exp:       capability.ExpiresAt.UnixMilli(),
		Scope:     string(response.Scope),
	})
}

func (s MediaServer) signedURL(r *http.Request, capability Capability) string {
	path := s.StreamPath
	if path == "" {
		path = DefaultStreamPath
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if v := r.Header.Get("X-Forwarded-Proto"); v != "" {
		scheme = v
	}

	query := url.Values{}
	query.Set("mint", capability.Mint)
	query.Set("owner", capability.Owner)
	query.Set("exp", strconv.FormatInt(capability.ExpiresAt.UnixMilli(), 10))
	query.Set("token", capability.Token)

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     path,
		RawQuery: query.Encode(),
	}

	return u.String()
}

type streamQuery struct {
	Mint  string `schema:"mint"`
	Owner string `schema:"owner"`
	Exp   int64  `schema:"exp"`
	Token string `schema:"token"`
}

func streamErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, ErrCapabilityExpired),
		errors.Is(err, ErrCapabilityInvalid),
		errors.Is(err, ErrCapabilitySpent):
		return http.StatusForbidden
	case errors.Is(err, ErrMediaNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// StreamHandler serves GET /media/stream: it validates the capability carried
// in the query string and redirects to the resolved media URL.
func (s MediaServer) StreamHandler(w http.ResponseWriter, r *http.Request) {
	var q streamQuery

	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	response, err := s.Service.StreamHandler(r.Context(), StreamRequest{
		Mint:  strings.TrimSpace(q.Mint),
		Owner: strings.TrimSpace(q.Owner),
		Exp:   q.Exp,
		Token: strings.TrimSpace(q.Token),
	})
	if err != nil {
		if errors.Is(err, ErrMissingField) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), streamErrorStatus(err))
		return
	}

	// A redirect keeps the handler stateless. Proxying the bytes with range
	// support would hide the upstream URL, at the cost of fronting the
	// transfer here.
	http.Redirect(w, r, response.Location, http.StatusFound)
}
