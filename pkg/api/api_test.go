package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/record-formula/pkg/store"
)

func setupTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s := store.New()
	return New(s), s
}

func doRequest(t *testing.T, srv *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return resp.StatusCode, out
}

func TestParseEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := doRequest(t, srv, "POST", "/v1/parse", `{"formula": "7 + 5 * 9"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "(7 + (5 * 9))", body["canonical"])

	ast := body["ast"].(map[string]any)
	assert.Equal(t, "op", ast["kind"])
	assert.Equal(t, "+", ast["op"])
}

func TestParseEndpointSyntaxError(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := doRequest(t, srv, "POST", "/v1/parse", `{"formula": "(d.X + ) / false"}`)
	require.Equal(t, 400, code)

	e := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_ARGUMENT", e["status"])
	assert.Contains(t, e["message"], "syntax error in expr at column 8")

	details := e["details"].(map[string]any)
	assert.Equal(t, "expr", details["rule"])
	assert.Equal(t, float64(7), details["pos"])
	assert.Equal(t, float64(8), details["column"])
	assert.Equal(t, ") / false", details["near"])
}

func TestParseEndpointBadBody(t *testing.T) {
	srv, _ := setupTestServer(t)
	code, body := doRequest(t, srv, "POST", "/v1/parse", `{"formula": `)
	assert.Equal(t, 400, code)
	assert.Contains(t, body["error"].(map[string]any)["message"], "invalid request body")
}

func TestTokenizeEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := doRequest(t, srv, "POST", "/v1/tokenize", `{"formula": "rbern(seed = 159)"}`)
	require.Equal(t, 200, code)

	tokens := body["tokens"].([]any)
	var types []string
	for _, tok := range tokens {
		types = append(types, tok.(map[string]any)["type"].(string))
	}
	assert.Equal(t, []string{"STRING", "LPAREN", "STRING", "EQ", "INT", "RPAREN"}, types)
}

func TestVocabularyEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	code, body := doRequest(t, srv, "GET", "/v1/vocabulary", "")
	require.Equal(t, 200, code)
	assert.Contains(t, body["functions"], "isfloatnan")
	assert.Contains(t, body["distributions"], "rhyper")
}

func TestFormulaLifecycle(t *testing.T) {
	srv, s := setupTestServer(t)

	code, body := doRequest(t, srv, "POST", "/v1/formulas?formulaId=ratio",
		`{"source": "d.TOTALVALUE / d.BUILDINGVALUE", "description": "value ratio"}`)
	require.Equal(t, 200, code, body)
	assert.Equal(t, "ratio", body["name"])
	assert.Equal(t, "000001-000", body["revisionId"])
	assert.Equal(t, "(d.TOTALVALUE / d.BUILDINGVALUE)", body["canonical"])
	assert.Equal(t, 1, s.Len())

	code, body = doRequest(t, srv, "GET", "/v1/formulas/ratio", "")
	require.Equal(t, 200, code)
	assert.Equal(t, "value ratio", body["description"])
	assert.Contains(t, body, "ast")

	code, body = doRequest(t, srv, "PATCH", "/v1/formulas/ratio", `{"source": "d.a + 1"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "000002-000", body["revisionId"])
	assert.Equal(t, "value ratio", body["description"])

	code, body = doRequest(t, srv, "GET", "/v1/formulas", "")
	require.Equal(t, 200, code)
	list := body["formulas"].([]any)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].(map[string]any), "ast")

	code, _ = doRequest(t, srv, "DELETE", "/v1/formulas/ratio", "")
	require.Equal(t, 200, code)

	code, body = doRequest(t, srv, "GET", "/v1/formulas/ratio", "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["status"])
}

func TestCreateFormulaErrors(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantCode   int
		wantStatus string
	}{
		{"missing id", "/v1/formulas", `{"source": "1"}`, 400, "INVALID_ARGUMENT"},
		{"invalid id", "/v1/formulas?formulaId=1bad", `{"source": "1"}`, 400, "INVALID_ARGUMENT"},
		{"missing source", "/v1/formulas?formulaId=a", `{}`, 400, "INVALID_ARGUMENT"},
		{"syntax error", "/v1/formulas?formulaId=a", `{"source": "rbern(seed=645)"}`, 400, "INVALID_ARGUMENT"},
		{"created", "/v1/formulas?formulaId=a", `{"source": "1"}`, 200, ""},
		{"duplicate", "/v1/formulas?formulaId=a", `{"source": "2"}`, 409, "ALREADY_EXISTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doRequest(t, srv, "POST", tt.path, tt.body)
			assert.Equal(t, tt.wantCode, code, body)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, body["error"].(map[string]any)["status"])
			}
		})
	}
}

func TestUpdateMissingFormula(t *testing.T) {
	srv, _ := setupTestServer(t)
	code, _ := doRequest(t, srv, "PATCH", "/v1/formulas/nope", `{"source": "1"}`)
	assert.Equal(t, 404, code)

	code, _ = doRequest(t, srv, "DELETE", "/v1/formulas/nope", "")
	assert.Equal(t, 404, code)
}

func TestHealthz(t *testing.T) {
	srv, _ := setupTestServer(t)
	code, body := doRequest(t, srv, "GET", "/healthz", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a.yaml", "ratio: d.a / d.b\nbroken: 1 +\n")
	write("b.json", `{"formulas": {"noise": "rnorm(seed=1)", "ratio": "2"}}`)
	write("c.yml", "- not a catalog\n")
	write("notes.txt", "ignored: 1")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	srv, s := setupTestServer(t)
	require.NoError(t, srv.LoadDir(dir))

	var names []string
	for _, f := range s.ListFormulas() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"noise", "ratio"}, names)

	f, err := s.GetFormula("ratio")
	require.NoError(t, err)
	assert.Equal(t, "d.a / d.b", f.Source)

	assert.Error(t, srv.LoadDir(filepath.Join(dir, "missing")))
}
