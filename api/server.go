package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/atomic"

	"github.com/trimatrixio/matrix-engine/common/config"
	"github.com/trimatrixio/matrix-engine/common/logging"
	"github.com/trimatrixio/matrix-engine/matrix"
)

// MatrixServer exposes the engine's operation surface over HTTP.
type MatrixServer struct {
	ctx    context.Context
	logger logging.Logger
	engine *matrix.Engine
	server *http.Server
	ready  atomic.Bool
}

// NewMatrixServer returns a server wired to an engine.
func NewMatrixServer(ctx context.Context, logger logging.Logger, engine *matrix.Engine) *MatrixServer {
	matrixServer := &MatrixServer{
		ctx:    ctx,
		logger: logger,
		engine: engine,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/register", matrixServer.OnRegister)
	mux.HandleFunc("/activate", matrixServer.OnActivate)
	mux.HandleFunc("/claim", matrixServer.OnClaimDividend)
	mux.HandleFunc("/tree", matrixServer.OnQueryTree)
	mux.HandleFunc("/dashboard", matrixServer.OnQueryDashboard)
	mux.HandleFunc("/cycles", matrixServer.OnQueryCycles)
	mux.HandleFunc("/healthz", matrixServer.OnHealth)
	matrixServer.server = &http.Server{
		Addr:         config.GetString("API_ADDR", ":9487"),
		WriteTimeout: time.Second * 25,
		Handler:      mux,
	}
	return matrixServer
}

// Shutdown stops the http server.
func (s *MatrixServer) Shutdown() error {
	s.ready.Store(false)
	return s.server.Shutdown(s.ctx)
}

// Run serves until the context is canceled.
func (s *MatrixServer) Run() error {
	s.logger.Info("Starting matrix api httpserver on %s", s.server.Addr)
	s.ready.Store(true)
	go func() {
		<-s.ctx.Done()
		s.logger.Info("Matrix api server receives shutdown signal.")
		if err := s.Shutdown(); err != nil {
			s.logger.Warn("shutdown: %s", err)
		}
	}()
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type registerReq struct {
	Wallet    string `json:"wallet"`
	SponsorID *int64 `json:"sponsor_id"`
}

// OnRegister handles POST /register.
func (s *MatrixServer) OnRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := s.engine.RegisterUser(req.Wallet, req.SponsorID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, user)
}

type activateReq struct {
	UserID      int64 `json:"user_id"`
	SlotNumber  int64 `json:"slot_number"`
	UseDividend bool  `json:"use_dividend"`
}

// OnActivate handles POST /activate.
func (s *MatrixServer) OnActivate(w http.ResponseWriter, r *http.Request) {
	var req activateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var err error
	var position interface{}
	if req.UseDividend {
		position, err = s.engine.ActivateSlotWithDividend(req.UserID, req.SlotNumber)
	} else {
		position, err = s.engine.ActivateSlot(req.UserID, req.SlotNumber)
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, position)
}

type claimReq struct {
	UserID int64  `json:"user_id"`
	Amount string `json:"amount"`
}

// OnClaimDividend handles POST /claim.
func (s *MatrixServer) OnClaimDividend(w http.ResponseWriter, r *http.Request) {
	var req claimReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.ClaimDividend(req.UserID, amount); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// OnQueryTree handles GET /tree?user_id=&slot_number=&cycle=.
func (s *MatrixServer) OnQueryTree(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	slotNumber, err := queryInt64(r, "slot_number")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	cycle, _ := queryInt64(r, "cycle")
	view, err := s.engine.UserTree(userID, slotNumber, cycle)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, view)
}

// OnQueryDashboard handles GET /dashboard?user_id=.
func (s *MatrixServer) OnQueryDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	dashboard, err := s.engine.GetDashboard(userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, dashboard)
}

// OnQueryCycles handles GET /cycles?user_id=&slot_number=.
func (s *MatrixServer) OnQueryCycles(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	slotNumber, err := queryInt64(r, "slot_number")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	cycles, err := s.engine.AvailableCycles(userID, slotNumber)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, cycles)
}

// OnHealth handles GET /healthz.
func (s *MatrixServer) OnHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func queryInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
}

func (s *MatrixServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response: %s", err)
	}
}

func (s *MatrixServer) writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *MatrixServer) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matrix.ErrUserNotFound),
		errors.Is(err, matrix.ErrSlotNotFound),
		errors.Is(err, matrix.ErrPositionNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, matrix.ErrSlotOrder),
		errors.Is(err, matrix.ErrSlotInactive),
		errors.Is(err, matrix.ErrSlotAlreadyActive),
		errors.Is(err, matrix.ErrInvalidWallet),
		errors.Is(err, matrix.ErrInvalidAmount):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, matrix.ErrInsufficientDividend):
		s.writeError(w, http.StatusPaymentRequired, err)
	case errors.Is(err, matrix.ErrConflict):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.logger.Error("internal error: %s", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}
