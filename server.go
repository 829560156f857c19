package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

const serviceVersion = "1.0.0"

// Server exposes the pipeline over HTTP. CORS and TLS are the reverse
// proxy's problem, not ours.
type Server struct {
	analyzer *Analyzer
	timeout  time.Duration
	model    string
}

func NewServer(analyzer *Analyzer, timeout time.Duration) *Server {
	return &Server{
		analyzer: analyzer,
		timeout:  timeout,
		model:    analyzer.embedder.ModelName(),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /schema", s.handleSchema)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /cluster", s.handleCluster)
	mux.HandleFunc("POST /similarity", s.handleSimilarity)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"model":   s.model,
		"version": serviceVersion,
	})
}

// handleSchema serves the reflected JSON schema of the analysis
// response so the frontend can validate against the live contract.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	writeJSON(w, http.StatusOK, reflector.Reflect(&AnalyzeResult{}))
}

// AnalyzeRequest carries parallel comment/organization arrays; entry i
// of organizations owns comment i.
type AnalyzeRequest struct {
	Comments      []string `json:"comments"`
	Organizations []string `json:"organizations"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	log.Printf("Analyzing %d comments from %d organizations", len(req.Comments), distinctCount(req.Organizations))

	result, err := s.analyzer.Analyze(ctx, req.Comments, req.Organizations)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("Analysis complete: %d themes identified", len(result.Themes))
	writeJSON(w, http.StatusOK, result)
}

// ClusterRequest asks for raw cluster labels over texts. NClusters is
// honored as given; zero means the service default.
type ClusterRequest struct {
	Texts     []string `json:"texts"`
	NClusters int      `json:"n_clusters"`
}

type clusterResponse struct {
	ClusterLabels []int `json:"cluster_labels"`
	NClusters     int   `json:"n_clusters"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	labels, k, err := s.analyzer.ClusterTexts(ctx, req.Texts, req.NClusters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clusterResponse{ClusterLabels: labels, NClusters: k})
}

// SimilarityRequest ranks candidates against a query text.
type SimilarityRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

type similarityResponse struct {
	Query   string         `json:"query"`
	Results []RankedResult `json:"results"`
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	results, err := s.analyzer.RankBySimilarity(ctx, req.Query, req.Candidates)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, similarityResponse{Query: req.Query, Results: results})
}

// requestContext bounds each request by the embed timeout; if the
// client goes away mid-computation all work is simply discarded.
func (s *Server) requestContext(r *http.Request) (ctx context.Context, cancel func()) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validationErrorf("invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: rejected
// input is the caller's fault, everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var validation *ValidationError
	if errors.As(err, &validation) {
		status = http.StatusBadRequest
	} else {
		log.Printf("Error during analysis: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ServeCmd starts the HTTP service.
func ServeCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the semantic analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			embedder, closeEmbedder, err := NewEmbedderFromConfig(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeEmbedder(); err != nil {
					log.Printf("Failed to close embedding cache: %v", err)
				}
			}()

			server := NewServer(NewAnalyzer(embedder), cfg.EmbedTimeout)
			httpServer := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Printf("Serving semantic analysis API on %s (model %s)", cfg.ListenAddr, cfg.EmbeddingModel)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
}
