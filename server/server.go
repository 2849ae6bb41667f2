// Package server serves the dashboard page, chart images and the control
// actions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/chart"
	"github.com/ISim/Arduino/smarthome/dashboard"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/view"
)

const (
	pathLightState = "/actions/light/state"
	pathLightColor = "/actions/light/color"
	pathFanState   = "/actions/fan/state"
	pathFanMode    = "/actions/fan/mode"
)

type Server struct {
	doc       *view.Document
	sensors   map[home.SensorKind]*dashboard.SensorController
	actuators *dashboard.ActuatorController
	gatherer  prometheus.Gatherer
	origins   []string
}

// New creates the HTTP surface. gatherer may be nil to disable /metrics.
func New(doc *view.Document, sensors []*dashboard.SensorController, actuators *dashboard.ActuatorController, gatherer prometheus.Gatherer, corsOrigins []string) *Server {
	byKind := make(map[home.SensorKind]*dashboard.SensorController, len(sensors))
	for _, s := range sensors {
		byKind[s.Kind()] = s
	}
	return &Server{
		doc:       doc,
		sensors:   byKind,
		actuators: actuators,
		gatherer:  gatherer,
		origins:   corsOrigins,
	}
}

// Handler returns the router wrapped in CORS and panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(accessLog)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/api/view", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/charts/{kind}.png", s.handleChart).Methods(http.MethodGet)

	r.HandleFunc(pathLightState, s.action(func(*http.Request) (home.Command, error) {
		return s.actuators.ToggleLight(), nil
	})).Methods(http.MethodPost)
	r.HandleFunc(pathLightColor, s.action(s.setColor)).Methods(http.MethodPost)
	r.HandleFunc(pathFanState, s.action(func(*http.Request) (home.Command, error) {
		return s.actuators.ToggleFan(), nil
	})).Methods(http.MethodPost)
	r.HandleFunc(pathFanMode, s.action(func(*http.Request) (home.Command, error) {
		return s.actuators.ToggleFanMode(), nil
	})).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(c.Handler(r))
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Dashboard server shutdown error")
		}
	}()

	log.Info().Str("addr", addr).Msg("Starting dashboard server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var charts []view.ChartImage
	for _, kind := range home.SensorKinds {
		sc, ok := s.sensors[kind]
		if !ok {
			continue
		}
		charts = append(charts, view.ChartImage{
			Canvas: sc.Chart().Canvas(),
			Title:  sc.Chart().Title(),
			Src:    "/charts/" + kind.String() + ".png",
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(view.RenderPage(s.doc, charts, view.Actions{
		LightState: pathLightState,
		LightColor: pathLightColor,
		FanState:   pathFanState,
		FanMode:    pathFanMode,
	})))
}

type viewResponse struct {
	Elements  []view.ElementState `json:"elements"`
	Actuators *actuatorsResponse  `json:"actuators,omitempty"`
}

type actuatorsResponse struct {
	LedIsOn bool   `json:"ledIsOn"`
	FanIsOn bool   `json:"fanIsOn"`
	FanMode bool   `json:"fanMode"`
	Color   string `json:"color,omitempty"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	resp := viewResponse{Elements: s.doc.State()}
	if st := s.actuators.State(); st.Received {
		resp.Actuators = &actuatorsResponse{
			LedIsOn: st.LedIsOn,
			FanIsOn: st.FanIsOn,
			FanMode: st.FanMode,
		}
		if st.Color != nil {
			resp.Actuators.Color = st.Color.Hex()
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := home.SensorKind(mux.Vars(r)["kind"])
	sc, ok := s.sensors[kind]
	if !kind.Valid() || !ok {
		http.Error(w, "unknown sensor", http.StatusNotFound)
		return
	}

	png, err := sc.Chart().PNG()
	if errors.Is(err, chart.ErrNotEnoughData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("sensor", kind.String()).Msg("Chart rendering failed")
		http.Error(w, "chart error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type colorRequest struct {
	Color string `json:"color"`
}

func (s *Server) setColor(r *http.Request) (home.Command, error) {
	var hex string
	if isJSON(r) {
		var req colorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		hex = req.Color
	} else {
		hex = r.FormValue("color")
	}
	return s.actuators.SetColor(hex)
}

// action runs a user action. JSON clients get the dispatched command back,
// form posts are redirected to the page.
func (s *Server) action(run func(*http.Request) (home.Command, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := run(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isJSON(r) || r.Header.Get("Accept") == "application/json" {
			respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
				"endpoint": cmd.Endpoint(),
				"payload":  cmd,
			})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	})
}
