package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bqmba/internal/auth"
	"bqmba/internal/gauge"
	"bqmba/internal/mba"
)

type GaugeClient interface {
	GetStatus() (*gauge.Status, error)
}

type BatteryResponse struct {
	Level       int     `json:"sensor.battery_level"`
	Voltage     float64 `json:"sensor.battery_voltage"`
	Current     float64 `json:"sensor.battery_current"`
	Temperature float64 `json:"sensor.battery_temperature"`
	State       string  `json:"sensor.battery_state"`
	IsCharging  bool    `json:"sensor.is_charging"`
}

type Server struct {
	gauge    GaugeClient
	runner   *mba.Runner
	addr     uint16
	unseal   []string
	verifier *auth.Verifier // nil locks write-only commands
	upgrader websocket.Upgrader
}

// New builds the API over runner, sending to addr. unseal names the
// commands of the websocket console's unseal verb.
func New(g GaugeClient, runner *mba.Runner, addr uint16, unseal []string, v *auth.Verifier) *Server {
	return &Server{
		gauge:    g,
		runner:   runner,
		addr:     addr,
		unseal:   unseal,
		verifier: v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /api/commands", s.commandsHandler)
	mux.HandleFunc("POST /api/mba/{name}", s.runHandler)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, listen string) error {
	srv := &http.Server{
		Addr:         listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Printf("[server] listening on %s", listen)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	resp := BatteryResponse{
		State: "Discharging", // Default assumption if we can't read anything
	}

	var st *gauge.Status
	if s.gauge != nil {
		var err error
		st, err = s.gauge.GetStatus()
		if err != nil {
			log.Printf("[server] error reading gauge: %v", err)
		}
	}

	if st != nil {
		resp.Level = int(st.SOC)
		resp.Voltage = st.Voltage
		resp.Current = st.Current
		resp.Temperature = st.Temperature

		switch {
		case st.FullyCharged:
			resp.State = "Full"
		case st.Current > 0:
			resp.State = "Charging"
		case st.Discharging:
			resp.State = "Discharging"
		default:
			resp.State = "Not Charging"
		}
	}

	resp.IsCharging = (resp.State == "Charging")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
