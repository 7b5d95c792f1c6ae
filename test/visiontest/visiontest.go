// Package visiontest provides a local fake of the cloud vision endpoints for
// tests: Custom Vision training and prediction, face detection, image
// analysis (OCR), and OpenAI image generation / chat completions.
//
// The fake is programmable per test: seed the exported fields, point a
// client at URL(), and assert on the recorded requests afterwards.
package visiontest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/pkg/vision/face"
	"github.com/orchardai/visionlab/pkg/vision/imageanalysis"
)

// Keys accepted by the fake, one per authentication style.
const (
	TrainingKey     = "test-training-key"
	PredictionKey   = "test-prediction-key"
	SubscriptionKey = "test-subscription-key"
	OpenAIKey       = "test-openai-key"
)

// UploadedImage records a single-image upload.
type UploadedImage struct {
	Data   []byte
	TagIDs string
}

// ChatRequest records a chat completion call's decoded payload.
type ChatRequest struct {
	Messages []json.RawMessage `json:"messages"`
}

// Server is the programmable fake service.
type Server struct {
	srv *httptest.Server
	mu  sync.Mutex

	// Seeded state served to clients.
	Project           customvision.Project
	Tags              []customvision.Tag
	TrainIteration    customvision.Iteration
	IterationStatuses []string
	BatchSummary      customvision.ImageCreateSummary
	Predictions       []customvision.Prediction
	Faces             []face.DetectedFace
	AnalyzeResult     imageanalysis.AnalyzeResult
	GeneratedImage    []byte
	ChatReply         string

	// FailStatus, when nonzero, makes every endpoint answer with this HTTP
	// status instead of its normal response.
	FailStatus int

	// Recorded requests.
	Uploads        []UploadedImage
	Batches        []customvision.ImageFileCreateBatch
	TrainCalls     int
	PollCalls      int
	ChatRequests   []ChatRequest
	Prompts        []string
	FaceQueries    []url.Values
	AnalyzeQueries []url.Values
}

// New starts the fake service. It is shut down automatically when the test
// finishes.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		TrainIteration: customvision.Iteration{ID: "iter-1", Status: "Training"},
		BatchSummary:   customvision.ImageCreateSummary{IsBatchSuccessful: true},
	}

	r := chi.NewRouter()

	// Custom Vision training API.
	r.Route("/customvision/v3.3/training/projects/{projectID}", func(r chi.Router) {
		r.Use(s.auth("Training-key", TrainingKey))
		r.Get("/", s.getProject)
		r.Get("/tags", s.getTags)
		r.Post("/images", s.createImage)
		r.Post("/images/files", s.createImagesFromFiles)
		r.Post("/train", s.trainProject)
		r.Get("/iterations/{iterationID}", s.getIteration)
	})

	// Custom Vision prediction API.
	r.Route("/customvision/v3.0/prediction/{projectID}", func(r chi.Router) {
		r.Use(s.auth("Prediction-key", PredictionKey))
		r.Post("/classify/iterations/{publishedName}/image", s.predict)
		r.Post("/detect/iterations/{publishedName}/image", s.predict)
	})

	// Face and image analysis APIs.
	r.With(s.auth("Ocp-Apim-Subscription-Key", SubscriptionKey)).
		Post("/face/v1.0/detect", s.detectFaces)
	r.With(s.auth("Ocp-Apim-Subscription-Key", SubscriptionKey)).
		Post("/computervision/imageanalysis:analyze", s.analyze)

	// OpenAI deployments.
	r.Route("/openai/deployments/{deployment}", func(r chi.Router) {
		r.Use(s.auth("api-key", OpenAIKey))
		r.Post("/images/generations", s.generateImage)
		r.Post("/chat/completions", s.chatCompletion)
	})

	// Hosting for "generated" images fetched by URL.
	r.Get("/generated/{name}", s.serveGenerated)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the fake service's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// GeneratedImageURL returns a URL that serves GeneratedImage.
func (s *Server) GeneratedImageURL() string {
	return s.srv.URL + "/generated/image.png"
}

func (s *Server) auth(header, want string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.failing(w) {
				return
			}
			got := r.Header.Get(header)
			// The OpenAI endpoints also accept a bearer token.
			if header == "api-key" && got == "" && r.Header.Get("Authorization") == "Bearer "+want {
				got = want
			}
			if got != want {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid or missing key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) failing(w http.ResponseWriter) bool {
	s.mu.Lock()
	code := s.FailStatus
	s.mu.Unlock()
	if code == 0 {
		return false
	}
	writeError(w, code, "ServiceError", "injected failure")
	return true
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.Project
	if p.ID == "" {
		p = customvision.Project{ID: chi.URLParam(r, "projectID"), Name: "fruit"}
	}
	writeJSON(w, p)
}

func (s *Server) getTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Tags)
}

func (s *Server) createImage(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.Uploads = append(s.Uploads, UploadedImage{Data: data, TagIDs: r.URL.Query().Get("tagIds")})
	s.mu.Unlock()
	writeJSON(w, customvision.ImageCreateSummary{IsBatchSuccessful: true})
}

func (s *Server) createImagesFromFiles(w http.ResponseWriter, r *http.Request) {
	var batch customvision.ImageFileCreateBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequestImageBatch", err.Error())
		return
	}
	s.mu.Lock()
	s.Batches = append(s.Batches, batch)
	sum := s.BatchSummary
	s.mu.Unlock()
	writeJSON(w, sum)
}

func (s *Server) trainProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.TrainCalls++
	it := s.TrainIteration
	s.mu.Unlock()
	writeJSON(w, it)
}

// getIteration serves IterationStatuses in order, repeating the final entry
// once the sequence is exhausted.
func (s *Server) getIteration(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.TrainIteration.Status
	if n := len(s.IterationStatuses); n > 0 {
		i := s.PollCalls
		if i >= n {
			i = n - 1
		}
		status = s.IterationStatuses[i]
	}
	s.PollCalls++

	writeJSON(w, customvision.Iteration{
		ID:     chi.URLParam(r, "iterationID"),
		Status: status,
	})
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	s.mu.Lock()
	preds := s.Predictions
	s.mu.Unlock()
	writeJSON(w, customvision.ImagePrediction{
		Project:     chi.URLParam(r, "projectID"),
		Iteration:   chi.URLParam(r, "publishedName"),
		Predictions: preds,
	})
}

func (s *Server) detectFaces(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	s.mu.Lock()
	s.FaceQueries = append(s.FaceQueries, r.URL.Query())
	faces := s.Faces
	s.mu.Unlock()
	if faces == nil {
		faces = []face.DetectedFace{}
	}
	writeJSON(w, faces)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	s.mu.Lock()
	s.AnalyzeQueries = append(s.AnalyzeQueries, r.URL.Query())
	result := s.AnalyzeResult
	s.mu.Unlock()
	writeJSON(w, result)
}

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	s.mu.Lock()
	s.Prompts = append(s.Prompts, req.Prompt)
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"data": []map[string]string{{"url": s.GeneratedImageURL()}},
	})
}

func (s *Server) chatCompletion(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}
	s.mu.Lock()
	s.ChatRequests = append(s.ChatRequests, req)
	reply := s.ChatReply
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": reply}},
		},
	})
}

func (s *Server) serveGenerated(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := s.GeneratedImage
	s.mu.Unlock()
	if data == nil {
		data = []byte("fake-png-bytes")
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, errCode, msg)
}
