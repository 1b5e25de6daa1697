package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	apierr "github.com/matzehuels/alchemytree/pkg/errors"
	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

// SSE event names.
const (
	eventLevel    = "level"
	eventComplete = "complete"
)

// levelEvent is the payload of a "level" event: the nodes and edges exposed
// by one tick.
type levelEvent struct {
	BuildID string        `json:"build_id"`
	Depth   int           `json:"depth"`
	Nodes   []layout.Node `json:"nodes"`
	Edges   []layout.Edge `json:"edges"`
	Status  reveal.Status `json:"status"`
	Text    string        `json:"text"`
}

// completeEvent is the payload of the final "complete" event.
type completeEvent struct {
	BuildID string        `json:"build_id"`
	Status  reveal.Status `json:"status"`
	Nodes   int           `json:"nodes"`
	Edges   int           `json:"edges"`
}

// handleReveal handles POST /api/reveal.
//
// The recipe is laid out, then a scheduler plays it back: each exposed
// level is sent as a "level" event and the stream ends with "complete".
// The scheduler is closed when the client goes away.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, r, apierr.New(apierr.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	req, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	delay, err := req.delay(s.cfg.Delay, s.cfg.MinDelay)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.runner.Layout(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	snaps := make(chan reveal.Snapshot, len(g.Levels)+1)
	sched := reveal.New(reveal.Options{
		Delay:    delay,
		MinDelay: s.cfg.MinDelay,
		Logger:   s.logger,
		OnChange: func(snap reveal.Snapshot) {
			if snap.Exposed == nil && !snap.Status.Complete {
				return
			}
			select {
			case snaps <- snap:
			case <-ctx.Done():
			}
		},
	})
	defer sched.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sched.Load(g)
	sched.Play()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("reveal client gone", "build", g.BuildID)
			return
		case snap := <-snaps:
			if snap.Exposed != nil {
				writeSSE(w, snap.Seq, eventLevel, levelOf(snap))
			}
			if snap.Status.Complete {
				writeSSE(w, snap.Seq, eventComplete, completeEvent{
					BuildID: snap.BuildID,
					Status:  snap.Status,
					Nodes:   len(snap.Nodes),
					Edges:   len(snap.Edges),
				})
				flusher.Flush()
				return
			}
			flusher.Flush()
		}
	}
}

// levelOf extracts the nodes and edges of the level a tick exposed. They
// are the tail of the snapshot's visible lists.
func levelOf(snap reveal.Snapshot) levelEvent {
	nodes := snap.Nodes[max(len(snap.Nodes)-len(snap.Exposed.NodeIDs), 0):]
	edges := snap.Edges[max(len(snap.Edges)-len(snap.Exposed.EdgeIDs), 0):]
	return levelEvent{
		BuildID: snap.BuildID,
		Depth:   snap.Exposed.Depth,
		Nodes:   nodes,
		Edges:   edges,
		Status:  snap.Status,
		Text:    snap.Status.Text(),
	}
}

// writeSSE writes a single SSE event.
func writeSSE(w http.ResponseWriter, id uint64, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{}`)
	}
	fmt.Fprintf(w, "id:%d\n", id)
	fmt.Fprintf(w, "event:%s\n", event)
	fmt.Fprintf(w, "data:%s\n\n", data)
}
