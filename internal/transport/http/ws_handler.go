package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/identity"
	"trivia-quiz-service/internal/notify"
)

// SessionHandler upgrades HTTP requests to websockets and runs one
// SessionController per connection. Every inbound message maps to one
// controller operation; outbound messages carry view transitions, question
// views, leaderboard snapshots, and notices.
type SessionHandler struct {
	source   app.QuestionSource
	store    app.LeaderboardStore // nil when no backend is configured
	id       *identity.Provider
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewSessionHandler(source app.QuestionSource, store app.LeaderboardStore, id *identity.Provider, log logrus.FieldLogger) *SessionHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionHandler{
		source: source,
		store:  store,
		id:     id,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startPayload struct {
	Amount     json.Number `json:"amount"`
	Category   string      `json:"category"`
	Difficulty string      `json:"difficulty"`
}

type startPvpPayload struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type submitScorePayload struct {
	PlayerName string `json:"playerName"`
}

type viewPayload struct {
	View domain.View  `json:"view"`
	Turn app.TurnInfo `json:"turn"`
}

type identityPayload struct {
	UserID string `json:"userId"`
	Ready  bool   `json:"ready"`
}

// ServeWS runs the session loop for one client connection.
func (h *SessionHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	// The request context is not cancelled while the hijacked connection is
	// alive; derive one that ends with this session so every pump has an
	// exit path after the client disconnects.
	ctx, cancelSession := context.WithCancel(r.Context())
	defer cancelSession()

	surface := notify.NewSurface()
	controller := app.NewSessionController(h.source, h.store, h.id, surface)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var pumps sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	// The notification surface keeps only the latest message; each shown
	// message is also pushed to the client.
	surface.OnShow(func(msg domain.Message) {
		select {
		case send <- outboundMessage[any]{Type: "notice", Payload: msg}:
		case <-closeSignals:
		}
	})

	// Identity resolution is independent of everything else; announce it
	// whenever the bootstrap completes.
	pumps.Add(1)
	go func() {
		defer pumps.Done()
		if err := h.id.WaitReady(ctx); err != nil {
			return
		}
		select {
		case send <- outboundMessage[any]{Type: "identity", Payload: identityPayload{UserID: h.id.UserID(), Ready: true}}:
		case <-closeSignals:
		}
	}()

	send <- outboundMessage[any]{Type: "view", Payload: viewPayload{View: controller.View()}}

	var stopWatch func()
	stopWatching := func() {
		if stopWatch != nil {
			stopWatch()
			stopWatch = nil
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "categories":
			categories := controller.LoadCategories(ctx)
			send <- outboundMessage[any]{Type: "categories", Payload: categories}

		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				surface.Show("Invalid Amount", "Please enter a number of questions between 1 and 50.")
				continue
			}
			amount, err := payload.Amount.Int64()
			if err != nil {
				// Non-numeric amount input is a validation error, never
				// silently truncated.
				surface.Show("Invalid Amount", "Please enter a number of questions between 1 and 50.")
				continue
			}
			if err := controller.StartSinglePlayerQuiz(ctx, int(amount), payload.Category, payload.Difficulty); err != nil {
				continue
			}
			h.sendView(send, controller)
			h.sendQuestion(send, controller)

		case "pvpSetup":
			controller.StartTwoPlayerSetup()
			h.sendView(send, controller)

		case "startPvp":
			var payload startPvpPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				surface.Show("Names Required", "Please enter names for both players.")
				continue
			}
			if err := controller.StartTwoPlayerQuiz(ctx, payload.Player1, payload.Player2); err != nil {
				continue
			}
			h.sendView(send, controller)
			h.sendQuestion(send, controller)

		case "question":
			h.sendQuestion(send, controller)

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				continue
			}
			feedback, err := controller.SubmitAnswer(payload.Choice)
			if err != nil {
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: feedback}

		case "next":
			outcome, err := controller.NextQuestion()
			if err != nil {
				continue
			}
			if !outcome.Finished || outcome.NextTurn {
				h.sendView(send, controller)
				h.sendQuestion(send, controller)
				continue
			}
			h.sendView(send, controller)
			h.sendResults(send, controller)

		case "results":
			h.sendResults(send, controller)

		case "submitScore":
			var payload submitScorePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				continue
			}
			if err := controller.SubmitScore(ctx, payload.PlayerName); err != nil {
				continue
			}
			h.sendResults(send, controller)

		case "leaderboard":
			controller.ShowLeaderboard()
			h.sendView(send, controller)
			if stopWatch != nil {
				continue
			}
			updates, cancel, err := controller.WatchTopScores(ctx)
			if err != nil {
				continue
			}
			stopWatch = cancel
			pumps.Add(1)
			go func() {
				defer pumps.Done()
				for {
					select {
					case snapshot, ok := <-updates:
						if !ok {
							return
						}
						select {
						case send <- outboundMessage[any]{Type: "topScores", Payload: snapshot}:
						case <-closeSignals:
							return
						}
					case <-closeSignals:
						return
					}
				}
			}()

		case "leaderboardStop":
			stopWatching()

		case "playAgain":
			stopWatching()
			controller.PlayAgain()
			h.sendView(send, controller)

		case "goHome":
			stopWatching()
			controller.GoHome()
			h.sendView(send, controller)

		default:
			send <- outboundMessage[any]{Type: "notice", Payload: domain.Message{Title: "Error", Text: "Unsupported message type."}}
		}
	}

	stopWatching()
	cancelSession()
	close(closeSignals)
	pumps.Wait()
	close(send)
	<-writerDone
}

func (h *SessionHandler) sendView(send chan<- outboundMessage[any], controller *app.SessionController) {
	send <- outboundMessage[any]{Type: "view", Payload: viewPayload{View: controller.View(), Turn: controller.Turn()}}
}

func (h *SessionHandler) sendQuestion(send chan<- outboundMessage[any], controller *app.SessionController) {
	question, err := controller.CurrentQuestion()
	if err != nil {
		return
	}
	send <- outboundMessage[any]{Type: "question", Payload: question}
}

func (h *SessionHandler) sendResults(send chan<- outboundMessage[any], controller *app.SessionController) {
	results, err := controller.Results()
	if err != nil {
		return
	}
	send <- outboundMessage[any]{Type: "results", Payload: results}
}
