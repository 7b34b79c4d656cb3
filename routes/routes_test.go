package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/vectorstore/chroma"
	"regulatory-chatbot-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	count     int
	countErr  error
	metadatas []map[string]any
	getErr    error
}

func (s *stubStore) Name() string { return "documentos_regulacion_ia" }

func (s *stubStore) Upsert(context.Context, []string, []string, []map[string]any) error {
	return nil
}

func (s *stubStore) Query(context.Context, string, int) ([]chroma.QueryMatch, error) {
	return nil, nil
}

func (s *stubStore) Count(context.Context) (int, error) {
	return s.count, s.countErr
}

func (s *stubStore) Get(context.Context) ([]string, []map[string]any, error) {
	return nil, s.metadatas, s.getErr
}

func TestHealthEndpointReportsCollection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router, &stubStore{count: 42})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["chroma"])
	assert.Equal(t, float64(42), body["documents"])
}

func TestHealthEndpointDegradesWhenStoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router, &stubStore{countErr: fmt.Errorf("connection refused")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["chroma"])
	assert.Equal(t, float64(0), body["documents"])
}

func TestCollectionStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := &config.Config{CorpusRoot: t.TempDir(), ManifestFile: "corpus_metadata.json", ChunkSize: 1000, ChunkOverlap: 200}
	store := &stubStore{count: 7}
	ingestion, err := services.NewIngestionService(cfg, store)
	require.NoError(t, err)
	SetupAdminRoutes(router, cfg, ingestion, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/collection/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "documentos_regulacion_ia", body["collection"])
	assert.Equal(t, float64(7), body["chunk_count"])
}

func TestCollectionStatsUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := &config.Config{CorpusRoot: t.TempDir(), ManifestFile: "corpus_metadata.json", ChunkSize: 1000, ChunkOverlap: 200}
	store := &stubStore{countErr: fmt.Errorf("down")}
	ingestion, err := services.NewIngestionService(cfg, store)
	require.NoError(t, err)
	SetupAdminRoutes(router, cfg, ingestion, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/collection/stats", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "service_unavailable", body["error_code"])
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router, &stubStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error_code"])
}

func TestCollectionDocumentsAggregatesChunks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := &config.Config{CorpusRoot: t.TempDir(), ManifestFile: "corpus_metadata.json", ChunkSize: 1000, ChunkOverlap: 200}
	store := &stubStore{metadatas: []map[string]any{
		{"id": "conpes_3975", "titulo": "Política Nacional", "chunk_index": 0},
		{"id": "conpes_3975", "titulo": "Política Nacional", "chunk_index": 1},
		{"id": "marco_etico", "titulo": "Marco Ético", "chunk_index": 0},
	}}
	ingestion, err := services.NewIngestionService(cfg, store)
	require.NoError(t, err)
	SetupAdminRoutes(router, cfg, ingestion, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/collection/documents", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Collection string `json:"collection"`
		Documents  []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Chunks int    `json:"chunks"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Documents, 2)
	assert.Equal(t, "conpes_3975", body.Documents[0].ID)
	assert.Equal(t, 2, body.Documents[0].Chunks)
	assert.Equal(t, "marco_etico", body.Documents[1].ID)
	assert.Equal(t, 1, body.Documents[1].Chunks)
}

func TestCollectionDocumentsStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := &config.Config{CorpusRoot: t.TempDir(), ManifestFile: "corpus_metadata.json", ChunkSize: 1000, ChunkOverlap: 200}
	store := &stubStore{getErr: fmt.Errorf("read failed")}
	ingestion, err := services.NewIngestionService(cfg, store)
	require.NoError(t, err)
	SetupAdminRoutes(router, cfg, ingestion, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/collection/documents", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body["error_code"])
}

func TestIngestEndpointMissingManifest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	cfg := &config.Config{CorpusRoot: t.TempDir(), ManifestFile: "corpus_metadata.json", ChunkSize: 1000, ChunkOverlap: 200}
	store := &stubStore{}
	ingestion, err := services.NewIngestionService(cfg, store)
	require.NoError(t, err)
	SetupAdminRoutes(router, cfg, ingestion, store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ingest", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}
