package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/booking"
	"enrollment-assessment/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service     *app.AssessmentService
	embedScript string
	upgrader    websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, embedScript string) *WSHandler {
	return &WSHandler{
		service:     service,
		embedScript: embedScript,
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

type answerPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type navigatePayload struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace"`
}

type embedPayload struct {
	Src string `json:"src"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one visitor's flow.
//
//	GET /ws?visitorId=<id>&path=<current address>
//
// A visitor without an ID gets a fresh one, reported in every state message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	visitorID := r.URL.Query().Get("visitorId")
	if visitorID == "" {
		visitorID = uuid.NewString()
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	session, updates, cancel, err := h.service.Open(ctx, visitorID, path)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(context.Background(), visitorID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var submits sync.WaitGroup

	trySend := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	sendError := func(err error) {
		trySend(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so senders never block on a dead connection
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		embeds := booking.NewEmbedRegistry()
		address := path
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				if snapshot.Address != address {
					address = snapshot.Address
					trySend(outboundMessage[any]{Type: "navigate", Payload: navigatePayload{
						Path:    snapshot.Address,
						Replace: snapshot.ReplaceAddress,
					}})
				}
				trySend(outboundMessage[any]{Type: "state", Payload: snapshot})
				if snapshot.Step == domain.StepResults && embeds.Inject(h.embedScript) {
					trySend(outboundMessage[any]{Type: "embed", Payload: embedPayload{Src: h.embedScript}})
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			if _, err := session.Start(); err != nil {
				sendError(err)
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendError(errors.New("invalid answer payload"))
				continue
			}
			if _, err := session.SelectAnswer(payload.Option); err != nil {
				sendError(err)
			}
		case "previous":
			if _, err := session.Previous(); err != nil {
				sendError(err)
			}
		case "next":
			if _, err := session.NextStep(); err != nil {
				sendError(err)
			}
		case "lead":
			var lead domain.LeadInfo
			if err := json.Unmarshal(inbound.Payload, &lead); err != nil {
				sendError(errors.New("invalid lead payload"))
				continue
			}
			if _, err := session.UpdateLead(lead); err != nil {
				sendError(err)
			}
		case "submit":
			submits.Add(1)
			go func() {
				defer submits.Done()
				// failures reach the client through the snapshot's error field
				if _, err := session.SubmitLead(ctx); err != nil && !errors.Is(err, domain.ErrSubmissionFailed) {
					sendError(err)
				}
			}()
		case "results":
			snapshot, err := session.EnterResults()
			if snapshot.Step != domain.StepResults {
				// the client is on the results address; send it back
				trySend(outboundMessage[any]{Type: "navigate", Payload: navigatePayload{
					Path:    snapshot.Address,
					Replace: true,
				}})
			}
			if err != nil {
				sendError(err)
			}
		default:
			sendError(errors.New("unsupported message type"))
		}
	}

	cancelCtx()
	close(closeSignals)
	submits.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}
