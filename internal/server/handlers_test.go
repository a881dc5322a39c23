package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/agent"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/faq"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/retrieval"
	"github.com/hyperjump/kaiwa/internal/session"
	"github.com/hyperjump/kaiwa/internal/storage"
)

const serverSource = `What services do you offer?
UX design and research.
How long does a project take?
Usually eight weeks.
Do you work with startups?
Yes, often.`

// constantEmbedder maps every text to the same vector, so the first corpus
// entry always wins with similarity 1.0.
type constantEmbedder struct{}

func (constantEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (c constantEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = c.Embed(ctx, texts[i])
	}
	return out, nil
}

func (constantEmbedder) Dimensions() int { return 2 }
func (constantEmbedder) Close() error    { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "faq.txt")
	if err := os.WriteFile(source, []byte(serverSource), 0o644); err != nil {
		t.Fatal(err)
	}

	store := faq.NewStore(source,
		filepath.Join(dir, "corpus.json"),
		filepath.Join(dir, "embeddings.bin"),
		extract.NewExtractor(), constantEmbedder{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	archive, err := storage.NewTranscriptStore(filepath.Join(dir, "transcripts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { archive.Close() })

	sessions := session.NewStore(0)
	t.Cleanup(sessions.Close)

	engine := retrieval.NewEngine(store, constantEmbedder{}, retrieval.NewPolicy(0.85), 4)
	router := agent.NewRouter(
		llm.NewMockGenerator("answering"),
		llm.NewMockGenerator("generated reply"),
		engine, sessions,
		agent.WithArchive(archive),
	)

	return NewServer(router, store, archive, &config.ServerConfig{Host: "localhost", Port: 0}, zap.NewNop(), "mock", 0.85)
}

func postTurn(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleTurn(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	rec := postTurn(t, handler, `{"session_id": "s1", "text": "what do you offer?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID != "s1" {
		t.Errorf("session id = %q", resp.SessionID)
	}
	if resp.Reply != "UX design and research." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if len(resp.Alternatives) != 2 {
		t.Errorf("alternatives = %v", resp.Alternatives)
	}
}

func TestHandleTurn_MintsSessionID(t *testing.T) {
	srv := newTestServer(t)
	rec := postTurn(t, srv.Routes(), `{"text": "what do you offer?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == "" {
		t.Error("expected minted session id")
	}
}

func TestHandleTurn_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	if rec := postTurn(t, handler, `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", rec.Code)
	}
	if rec := postTurn(t, handler, `{"session_id": "s1", "text": ""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: status = %d", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	// Archive one turn so the counters are non-zero.
	postTurn(t, handler, `{"session_id": "s1", "text": "what do you offer?"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["corpus_entries"] != 3 {
		t.Errorf("corpus_entries = %d", resp["corpus_entries"])
	}
	if resp["archived_sessions"] != 1 || resp["archived_messages"] != 2 {
		t.Errorf("archive counts = %v", resp)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
