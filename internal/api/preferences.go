package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/eeviriyi/site/internal/log"
)

const (
	// preferencesCookie holds the visitor's timezone preferences as
	// base64-encoded JSON. Preferences are per-browser, not per-account;
	// the site has no user accounts.
	preferencesCookie = "preferences"

	preferencesMaxAge = int(365 * 24 * time.Hour / time.Second)

	// maxTimeZones bounds the world clock list.
	maxTimeZones = 10
)

// Preferences is the visitor's world clock configuration.
type Preferences struct {
	// TimeZones are IANA zone names shown in the world clock.
	TimeZones []string `json:"timeZones"`

	// Hour12 selects 12-hour display.
	Hour12 bool `json:"hour12"`

	// Active is the zone highlighted as primary.
	Active string `json:"active,omitempty"`
}

// defaultPreferences is what a visitor without the cookie sees.
func defaultPreferences() Preferences {
	return Preferences{TimeZones: []string{"Asia/Shanghai"}, Hour12: false}
}

// Validate checks zone names against the IANA database.
func (p Preferences) Validate() error {
	if len(p.TimeZones) == 0 {
		return fmt.Errorf("at least one time zone is required")
	}
	if len(p.TimeZones) > maxTimeZones {
		return fmt.Errorf("at most %d time zones are allowed", maxTimeZones)
	}
	for _, name := range p.TimeZones {
		if _, err := time.LoadLocation(name); err != nil {
			return fmt.Errorf("unknown time zone %q", name)
		}
	}
	if p.Active != "" {
		if _, err := time.LoadLocation(p.Active); err != nil {
			return fmt.Errorf("unknown active time zone %q", p.Active)
		}
	}
	return nil
}

// PreferencesHandler reads and writes the preferences cookie. The server
// never stores preferences; the cookie is the single source of truth.
type PreferencesHandler struct {
	logger log.Logger
}

// NewPreferencesHandler creates a preferences handler.
func NewPreferencesHandler(logger log.Logger) *PreferencesHandler {
	return &PreferencesHandler{logger: logger}
}

// RegisterRoutes registers preference routes on the given mux.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences", h.get)
	mux.HandleFunc("PUT /api/preferences", h.put)
}

func (h *PreferencesHandler) get(w http.ResponseWriter, r *http.Request) {
	prefs := defaultPreferences()

	if c, err := r.Cookie(preferencesCookie); err == nil {
		decoded, err := base64.URLEncoding.DecodeString(c.Value)
		if err == nil {
			var stored Preferences
			if json.Unmarshal(decoded, &stored) == nil && stored.Validate() == nil {
				prefs = stored
			}
		}
	}

	writeJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) put(w http.ResponseWriter, r *http.Request) {
	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if err := prefs.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error())
		return
	}

	encoded, err := json.Marshal(prefs)
	if err != nil {
		h.logger.Error("failed to encode preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "ENCODE_FAILED", "failed to store preferences")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     preferencesCookie,
		Value:    base64.URLEncoding.EncodeToString(encoded),
		Path:     "/",
		MaxAge:   preferencesMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, prefs)
}
