package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// The window front end draws on a fixed canvas; pointer positions are
// mapped to cells by dividing by the cell size.
const (
	canvasWidth  = 800
	canvasHeight = 800
)

//go:embed web/index.html
var indexHTML []byte

type stateResponse struct {
	Board      [][]int           `json:"board"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	NextPlayer string            `json:"next_player"`
	Status     string            `json:"status"`
	Winner     int               `json:"winner"`
	Banner     string            `json:"banner"`
	Hash       string            `json:"hash"`
	History    []historyEntryDTO `json:"history"`
	Cache      EngineStats       `json:"cache"`
}

type historyEntryDTO struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player string `json:"player"`
	Engine bool   `json:"engine"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type apiClick struct {
	PX int `json:"px"`
	PY int `json:"py"`
}

type moveResponse struct {
	Applied bool          `json:"applied"`
	State   stateResponse `json:"state"`
}

type bestMoveResponse struct {
	Move *Move `json:"move"`
	Over bool  `json:"over"`
}

// WebUI is the window front end: a browser page backed by an HTTP API,
// with state pushed over websocket after every change.
type WebUI struct {
	gc   *GameController
	hub  *Hub
	addr string
}

func NewWebUI(gc *GameController, addr string) *WebUI {
	ui := &WebUI{gc: gc, hub: NewHub(), addr: addr}
	gc.SetChangePublisher(func(snapshot GameSnapshot) {
		_ = ui.Render(snapshot)
	})
	return ui
}

func (ui *WebUI) Render(snapshot GameSnapshot) error {
	ui.hub.Publish(stateFromSnapshot(snapshot))
	return nil
}

// Translate maps a pointer position on the canvas to a click on a cell.
// Positions outside the canvas are ignored.
func (ui *WebUI) Translate(event InputEvent) Action {
	if !event.Pointer {
		return Action{Kind: ActionNone}
	}
	board := ui.gc.Board()
	if event.PX < 0 || event.PY < 0 || event.PX >= canvasWidth || event.PY >= canvasHeight {
		return Action{Kind: ActionNone}
	}
	fieldWidth := max(1, canvasWidth/board.Width())
	fieldHeight := max(1, canvasHeight/board.Height())
	x, y := event.PX/fieldWidth, event.PY/fieldHeight
	if !board.InBounds(x, y) {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionClick, X: x, Y: y}
}

func (ui *WebUI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ui.hub.Run(ctx.Done())

	server := &http.Server{
		Addr:              ui.addr,
		Handler:           ui.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	log.Info().Str("addr", ui.addr).Msg("window-frontend-listening")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("window-frontend-stopping")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = fmt.Errorf("serve %s: %w", ui.addr, err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("graceful-shutdown-failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warn().Err(closeErr).Msg("forced-close-failed")
		}
	}
	return runErr
}

func (ui *WebUI) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stateFromSnapshot(ui.gc.Snapshot()))
	})

	r.Post("/api/place", func(w http.ResponseWriter, r *http.Request) {
		ui.handleMove(w, r, ui.gc.Place)
	})

	r.Post("/api/turn", func(w http.ResponseWriter, r *http.Request) {
		ui.handleMove(w, r, ui.gc.PlayTurn)
	})

	r.Post("/api/click", func(w http.ResponseWriter, r *http.Request) {
		var payload apiClick
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		action := ui.Translate(InputEvent{Pointer: true, PX: payload.PX, PY: payload.PY})
		applied := applyAction(ui.gc, action)
		writeJSON(w, http.StatusOK, moveResponse{Applied: applied, State: stateFromSnapshot(ui.gc.Snapshot())})
	})

	r.Post("/api/engine_move", func(w http.ResponseWriter, r *http.Request) {
		_, applied := ui.gc.EngineMove()
		writeJSON(w, http.StatusOK, moveResponse{Applied: applied, State: stateFromSnapshot(ui.gc.Snapshot())})
	})

	r.Get("/api/best_move", func(w http.ResponseWriter, r *http.Request) {
		move, ok := ui.gc.BestMove()
		if !ok {
			writeJSON(w, http.StatusOK, bestMoveResponse{Over: true})
			return
		}
		writeJSON(w, http.StatusOK, bestMoveResponse{Move: &move})
	})

	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		applyAction(ui.gc, Action{Kind: ActionReset})
		writeJSON(w, http.StatusOK, stateFromSnapshot(ui.gc.Snapshot()))
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ui.gc.Snapshot().Stats)
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		ui.serveWS(w, r)
	})
	return r
}

func (ui *WebUI) handleMove(w http.ResponseWriter, r *http.Request, play func(x, y int) bool) {
	var payload apiMove
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board := ui.gc.Board()
	if !board.InBounds(payload.X, payload.Y) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("%v: (%d,%d) on %dx%d board", ErrOutOfBounds, payload.X, payload.Y, board.Width(), board.Height()),
		})
		return
	}
	applied := play(payload.X, payload.Y)
	writeJSON(w, http.StatusOK, moveResponse{Applied: applied, State: stateFromSnapshot(ui.gc.Snapshot())})
}

func (ui *WebUI) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket-upgrade-failed")
		return
	}
	client := &Client{hub: ui.hub, send: make(chan []byte, 16)}
	ui.hub.Register(client)
	client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(stateFromSnapshot(ui.gc.Snapshot()))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			log.Debug().Err(err).Msg("websocket-write-failed")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			ui.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_state":
			client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(stateFromSnapshot(ui.gc.Snapshot()))})
		case "click":
			var click apiClick
			if err := json.Unmarshal(msg.Payload, &click); err != nil {
				continue
			}
			applyAction(ui.gc, ui.Translate(InputEvent{Pointer: true, PX: click.PX, PY: click.PY}))
		case "reset":
			applyAction(ui.gc, Action{Kind: ActionReset})
		}
	}
}

func stateFromSnapshot(snapshot GameSnapshot) stateResponse {
	board := snapshot.Board
	return stateResponse{
		Board:      boardToSlice(board),
		Width:      board.Width(),
		Height:     board.Height(),
		NextPlayer: board.Turn().String(),
		Status:     statusToString(snapshot.Status),
		Winner:     winnerFromStatus(snapshot.Status),
		Banner:     snapshot.Banner,
		Hash:       fmt.Sprintf("0x%016x", board.Hash()),
		History:    historyToDTO(snapshot.History),
		Cache:      snapshot.Stats,
	}
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusXWon:
		return 1
	case StatusOWon:
		return 2
	default:
		return 0
	}
}

func historyToDTO(entries []HistoryEntry) []historyEntryDTO {
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryDTO{
			X:      entry.Move.X,
			Y:      entry.Move.Y,
			Player: entry.Player.String(),
			Engine: entry.IsEngine,
		})
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
