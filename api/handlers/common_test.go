// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/index"
	"github.com/meghashyamc/migemosearch/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"report.pdf":                  "pdf",
	"会議メモ.txt":                    "memo",
	"kaisha/annual_report.xlsx":   "xlsx",
	"kaisha/かいしゃ案内.docx":          "docx",
	"music/nested/kaijuu.mp3":     "mp3",
	".cache/ignored.txt":          "hidden",
	"music/nested/.ignored_too.md": "hidden",
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router   *gin.Engine
	root     string
	searchDB *searchdb.BleveDB
	kvDB     *kvdb.BoltDB
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {
	t.Helper()

	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	storageDir := t.TempDir()
	cfg.Set("database.storage_path", storageDir)
	cfg.Set("database.kvdb_path", filepath.Join(storageDir, "kv.db"))

	root := filepath.Join(t.TempDir(), "root")
	for relPath, content := range testFiles {
		fullPath := filepath.Join(root, filepath.FromSlash(relPath))
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := newTestLogger()

	searchDB, err := searchdb.New(testLogger, cfg)
	assert.NoError(err, "could not create search database")

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	ctx, cancel := context.WithCancel(context.Background())
	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupIndex(ctx, router, testLogger, searchDB, kvDB, validator)
	SetupSearch(router, testLogger, searchDB, validator)

	t.Cleanup(func() {
		cancel()
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, root: root, searchDB: searchDB, kvDB: kvDB}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// indexAndWait posts an index request for root and polls until it completes.
func indexAndWait(server *testServer, assert *require.Assertions, body map[string]any) {
	w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/index", defaultTestRequestHeaders, body, nil)
	assert.Equal(http.StatusAccepted, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

	var accepted struct {
		Data IndexResponse `json:"data"`
	}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &accepted))

	assert.Eventually(func() bool {
		w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/index/"+accepted.Data.ID, nil, nil, nil)
		if w.Code != http.StatusOK {
			return false
		}
		var status struct {
			Data IndexStatusResponse `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Data.Progress == index.ProgressStatusComplete
	}, 10*time.Second, 50*time.Millisecond, "timed out waiting for index creation: %s", accepted.Data.ID)
}
