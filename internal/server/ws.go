package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/typetrace/typetrace/internal/replay"
	"github.com/typetrace/typetrace/internal/store"
)

// Live replay protocol, server to client:
//
//	{"type":"init","total":N,"examId":..,"studentId":..,"questionId":..}
//	{"type":"frame","index":i,"total":N,"text":"..","cursor":c}   per entry
//	{"type":"done"}                                               on finish
//	{"type":"error","error":".."}                                 on failure
//
// and client to server:
//
//	{"action":"pause"} {"action":"resume"} {"action":"reset"}
//	{"action":"speed","value":2.5}
//
// Each connection owns one scheduler; "reset" rewinds to the beginning
// and restarts playback.
type wsServerFrame struct {
	Type       string `json:"type"`
	Index      int    `json:"index,omitempty"`
	Total      int    `json:"total,omitempty"`
	Text       string `json:"text,omitempty"`
	Cursor     int    `json:"cursor,omitempty"`
	ExamID     string `json:"examId,omitempty"`
	StudentID  string `json:"studentId,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type wsClientFrame struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

func (s *Server) wsUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
}

// handleReplay streams a stored question's replay over a WebSocket, one
// frame per applied log entry, honoring pause/resume/reset/speed commands
// from the client.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	examID, studentID, questionID := vars["examID"], vars["studentID"], vars["questionID"]

	sub, err := s.store.GetSubmission(r.Context(), examID, studentID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		s.logger.Error("loading submission for replay", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load submission")
		return
	}
	question, ok := sub.Questions[questionID]
	if !ok {
		s.writeError(w, http.StatusNotFound, "question not found")
		return
	}

	upgrader := s.wsUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.Must(uuid.NewV7()).String()
	logger := s.logger.With(
		"replaySession", sessionID,
		"examId", examID,
		"studentId", studentID,
		"questionId", questionID,
	)
	logger.Info("live replay started", "entries", len(question.EventLog))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// All frames funnel through one writer goroutine; gorilla connections
	// allow a single concurrent writer.
	frames := make(chan wsServerFrame, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case frame := <-frames:
				if err := conn.WriteJSON(frame); err != nil {
					logger.Debug("websocket write failed", "error", err)
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	send := func(f wsServerFrame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	}

	var sched *replay.Scheduler
	sched = replay.New(question.EventLog,
		replay.WithSpeed(s.cfg.Replay.DefaultSpeed),
		replay.WithMaxDelay(s.cfg.Replay.MaxEventDelay()),
		replay.WithLogger(logger),
		replay.WithNotify(func(p replay.Progress) {
			snap := sched.Snapshot()
			send(wsServerFrame{
				Type:   "frame",
				Index:  p.Index,
				Total:  p.Total,
				Text:   snap.Text,
				Cursor: snap.Cursor,
			})
		}),
	)

	// start begins one playback run and reports its completion frame.
	start := func() {
		done := sched.Done()
		if err := sched.Start(ctx); err != nil {
			send(wsServerFrame{Type: "error", Error: "replay failed to start"})
			return
		}
		go func() {
			select {
			case <-done:
				if sched.State() == replay.StateFinished {
					send(wsServerFrame{Type: "done"})
				}
			case <-ctx.Done():
			}
		}()
	}

	send(wsServerFrame{
		Type:       "init",
		Total:      sched.Total(),
		ExamID:     examID,
		StudentID:  studentID,
		QuestionID: questionID,
	})

	// Command reader: client actions until disconnect. Commands execute
	// here so playback control stays on one goroutine.
	cmds := make(chan wsClientFrame)
	go func() {
		defer close(cmds)
		for {
			var cmd wsClientFrame
			if err := conn.ReadJSON(&cmd); err != nil {
				logger.Debug("websocket closed", "error", err)
				return
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	start()
	for {
		select {
		case cmd, ok := <-cmds:
			if !ok {
				// Client went away: tear down the run and the writer.
				cancel()
				sched.Reset()
				<-writerDone
				logger.Info("live replay ended")
				return
			}
			switch cmd.Action {
			case "pause":
				sched.Pause()
			case "resume":
				sched.Resume()
			case "speed":
				sched.SetSpeed(cmd.Value)
			case "reset":
				sched.Reset()
				start()
			default:
				logger.Warn("ignoring unknown replay command", "action", cmd.Action)
			}
		case <-ctx.Done():
			sched.Reset()
			<-writerDone
			logger.Info("live replay ended")
			return
		}
	}
}
