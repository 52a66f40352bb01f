package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/server/api"
)

func newTestServer(t *testing.T) *AlgestepServer {
	srv, err := New(Config{
		Secret:      []byte("0123456789abcdef0123456789abcdef"),
		UnauthDelay: -1,
	})
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func do(srv *AlgestepServer, method, path, body, tok string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, api.PathPrefix+path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, api.PathPrefix+path, nil)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func createSolve(t *testing.T, srv *AlgestepServer, body string) api.CreateSolveResponse {
	w := do(srv, "POST", "/solves", body, "")
	if !assert.Equal(t, http.StatusCreated, w.Code, w.Body.String()) {
		t.FailNow()
	}
	var resp api.CreateSolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func Test_SolveSession(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	created := createSolve(t, srv, `{"expression": "2+3*4"}`)
	assert.NotEmpty(created.Token)
	assert.Equal("2+3*4", created.Display)

	// stepping needs the token
	w := do(srv, "POST", "/solves/"+created.ID+"/steps", "", "")
	assert.Equal(http.StatusUnauthorized, w.Code)

	var displays []string
	for i := 0; i < 5; i++ {
		w = do(srv, "POST", "/solves/"+created.ID+"/steps", "", created.Token)
		if !assert.Equal(http.StatusOK, w.Code, w.Body.String()) {
			return
		}
		var step api.StepResponse
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &step))
		if step.Done {
			assert.Empty(step.Changes)
			assert.Nil(step.Step)
			break
		}
		if assert.NotNil(step.Step) {
			displays = append(displays, step.Step.Display)
		}
	}
	assert.Equal([]string{"2 + 12", "14"}, displays)

	w = do(srv, "GET", "/solves/"+created.ID, "", "")
	if assert.Equal(http.StatusOK, w.Code) {
		var got api.SolveModel
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(got.Done)
		assert.Equal("14", got.Display)
		if assert.Len(got.Steps, 2) {
			assert.Equal([]string{"multiply integers: 3, 4 => 12"}, got.Steps[0].Changes)
		}
	}

	w = do(srv, "DELETE", "/solves/"+created.ID, "", created.Token)
	assert.Equal(http.StatusNoContent, w.Code)

	w = do(srv, "GET", "/solves/"+created.ID, "", "")
	assert.Equal(http.StatusNotFound, w.Code)

	// the token died with the solve
	w = do(srv, "POST", "/solves/"+created.ID+"/steps", "", created.Token)
	assert.Equal(http.StatusUnauthorized, w.Code)
}

func Test_CreateStep_otherSolvesToken(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	first := createSolve(t, srv, `{"expression": "1+1"}`)
	second := createSolve(t, srv, `{"expression": "2+2"}`)

	w := do(srv, "POST", "/solves/"+second.ID+"/steps", "", first.Token)
	assert.Equal(http.StatusForbidden, w.Code)

	w = do(srv, "DELETE", "/solves/"+second.ID, "", first.Token)
	assert.Equal(http.StatusForbidden, w.Code)
}

func Test_CreateStep_invalidMath(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	created := createSolve(t, srv, `{"expression": "1 / 0"}`)

	w := do(srv, "POST", "/solves/"+created.ID+"/steps", "", created.Token)
	assert.Equal(http.StatusUnprocessableEntity, w.Code)

	var errResp struct {
		Error string `json:"error"`
	}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(errResp.Error, "Invalid math step")
}

func Test_CreateSolve_badRequests(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectStatus int
		expectMsg    string
	}{
		{name: "missing expression", body: `{}`, expectStatus: http.StatusBadRequest},
		{name: "unknown property", body: `{"expression": "1", "expr": "1"}`, expectStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"expression": `, expectStatus: http.StatusBadRequest, expectMsg: "malformed JSON in request"},
		{name: "syntax error", body: `{"expression": "2 + * 3"}`, expectStatus: http.StatusBadRequest},
		{name: "unknown rule", body: `{"expression": "2 + 3", "exclude": ["AddSubIntegerz"]}`, expectStatus: http.StatusBadRequest},
		{name: "rule name not a name", body: `{"expression": "2 + 3", "exclude": ["Add Sub"]}`, expectStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			srv := newTestServer(t)

			w := do(srv, "POST", "/solves", tc.body, "")
			assert.Equal(tc.expectStatus, w.Code, w.Body.String())

			var errResp struct {
				Error string `json:"error"`
			}
			assert.NoError(json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.NotEmpty(errResp.Error)
			if tc.expectMsg != "" {
				assert.Equal(tc.expectMsg, errResp.Error)
			}
		})
	}
}

func Test_Evaluate(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectStatus int
		expectValue  string
	}{
		{name: "plain", body: `{"expression": "2+3*4"}`, expectStatus: http.StatusOK, expectValue: "14"},
		{name: "bound", body: `{"expression": "2a + b", "bindings": {"a": "3", "b": "frac{1/2}"}}`, expectStatus: http.StatusOK, expectValue: "frac{13/2}"},
		{name: "long variable name", body: `{"expression": "2a", "bindings": {"ab": "3"}}`, expectStatus: http.StatusBadRequest},
		{name: "divide by zero", body: `{"expression": "1/0"}`, expectStatus: http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			srv := newTestServer(t)

			w := do(srv, "POST", "/evaluate", tc.body, "")
			if !assert.Equal(tc.expectStatus, w.Code, w.Body.String()) {
				return
			}
			if tc.expectValue != "" {
				var resp api.EvaluateResponse
				assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(tc.expectValue, resp.Value)
			}
		})
	}
}

func Test_GetRules(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := do(srv, "GET", "/rules", "", "")
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}

	var rules []api.RuleModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &rules))
	names := map[string]api.RuleModel{}
	for _, r := range rules {
		names[r.Name] = r
	}
	assert.Contains(names, "AddSubIntegers")
	assert.Equal("addition and subtraction", names["AddSubIntegers"].Bucket)
	assert.True(names["AddSubValues"].Fallback)
}

func Test_GetInfo_cbor(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", api.PathPrefix+"/info", nil)
	req.Header.Set("Accept", "application/cbor")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}
	assert.Equal("application/cbor", w.Header().Get("Content-Type"))

	var info api.InfoModel
	assert.NoError(cbor.Unmarshal(w.Body.Bytes(), &info))
	assert.NotEmpty(info.Version.Server)
	assert.NotEmpty(info.Version.Algestep)
}

func Test_unknownRoute(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := do(srv, "GET", "/nothing", "", "")
	assert.Equal(http.StatusNotFound, w.Code)

	w = do(srv, "PUT", "/rules", "", "")
	assert.Equal(http.StatusMethodNotAllowed, w.Code)
}
