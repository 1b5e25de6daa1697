package server

import (
	"net/http"

	"github.com/matzehuels/alchemytree/pkg/buildinfo"
	"github.com/matzehuels/alchemytree/pkg/layout"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

// layoutStats summarizes a graph.
type layoutStats struct {
	Nodes  int `json:"nodes"`
	Edges  int `json:"edges"`
	Levels int `json:"levels"`
}

// layoutResponse is the body of a successful /api/layout call. Artifacts
// are base64-encoded by encoding/json.
type layoutResponse struct {
	Cached    bool              `json:"cached"`
	Stats     layoutStats       `json:"stats"`
	Graph     *layout.Graph     `json:"graph"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

// handleLayout handles POST /api/layout.
//
// Without "formats" only the graph is returned. With formats, the named
// artifacts are rendered as well.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(req.Formats) == 0 {
		g, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, layoutResponse{Cached: hit, Stats: statsOf(g), Graph: g})
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Cached:    result.CacheInfo.LayoutHit,
		Stats:     statsOf(result.Graph),
		Graph:     result.Graph,
		Artifacts: result.Artifacts,
	})
}

func statsOf(g *layout.Graph) layoutStats {
	return layoutStats{Nodes: len(g.Nodes), Edges: len(g.Edges), Levels: len(g.Levels)}
}
