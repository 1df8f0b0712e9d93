package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	espalier "github.com/espalier-dev/espalier"
	httpadapter "github.com/espalier-dev/espalier/pkg/adapters/http"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves a fixed set of forms, standing in for the Loam vault.
type memSource map[string]*domain.Form

func (s memSource) Load(ctx context.Context, id string) (*domain.Form, error) {
	form, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("form %q not found", id)
	}
	return form, nil
}

func testForm() *domain.Form {
	return &domain.Form{
		ID: "wellbeing",
		Steps: []domain.Step{{
			ID: "s1",
			Questions: []domain.Question{
				{ID: "mood", Type: domain.TypeRadio, Options: []domain.Option{
					{ID: "good", Label: "Good"}, {ID: "bad", Label: "Bad"},
				}},
				{ID: "why_bad", Type: domain.TypeLongText, Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "mood", Operator: domain.OpEquals, Value: "bad"},
				}}},
				{ID: "hobbies", Type: domain.TypeCheckbox, Options: []domain.Option{
					{ID: "music", Label: "Music"},
				}},
				{ID: "detail", Type: domain.TypeShortText, ForOptionID: "music", LinkedQuestionID: "hobbies"},
			},
		}},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := espalier.New(espalier.WithRemovalDelay(0))
	server := httpadapter.NewServer(engine, memSource{"wellbeing": testForm()})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type sessionPayload struct {
	SessionID string   `json:"session_id"`
	View      []string `json:"view"`
}

type viewPayload struct {
	View []string `json:"view"`
}

func openSession(t *testing.T, ts *httptest.Server) sessionPayload {
	t.Helper()
	resp := postJSON(t, ts.URL+"/sessions", map[string]string{"form_id": "wellbeing", "step_id": "s1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[sessionPayload](t, resp)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Info(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/info")
	require.NoError(t, err)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "espalier-http", body["app"])
	assert.Equal(t, "1.0.0", body["api_version"])
}

func TestServer_GetForm(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/forms/wellbeing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	form := decode[domain.Form](t, resp)
	assert.Equal(t, "wellbeing", form.ID)

	resp, err = http.Get(ts.URL + "/forms/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	sess := openSession(t, ts)
	assert.Equal(t, []string{"mood", "hobbies"}, sess.View)

	// Answer flips the conditional question in.
	resp := postJSON(t, ts.URL+"/sessions/"+sess.SessionID+"/answer", map[string]any{
		"question_id": "mood", "value": "bad",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[viewPayload](t, resp)
	assert.Equal(t, []string{"mood", "why_bad", "hobbies"}, view.View)

	// Toggle inserts the option-specific question.
	resp = postJSON(t, ts.URL+"/sessions/"+sess.SessionID+"/toggle", map[string]any{
		"question_id": "hobbies", "option_id": "music", "checked": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[viewPayload](t, resp)
	assert.Contains(t, view.View, "detail@music")

	// Close.
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+sess.SessionID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	// Gone afterwards.
	resp, err = http.Get(ts.URL + "/sessions/" + sess.SessionID + "/view")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_CreateSession_Errors(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/sessions", map[string]string{"form_id": "ghost", "step_id": "s1"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/sessions", map[string]string{"form_id": "wellbeing", "step_id": "ghost"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Answer_Validation(t *testing.T) {
	ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+sess.SessionID+"/answer", map[string]any{"value": "x"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/sessions/unknown/answer", map[string]any{
		"question_id": "mood", "value": "bad",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Toggle_UnknownQuestion(t *testing.T) {
	ts := newTestServer(t)
	sess := openSession(t, ts)

	resp := postJSON(t, ts.URL+"/sessions/"+sess.SessionID+"/toggle", map[string]any{
		"question_id": "ghost", "option_id": "music", "checked": true,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_OpenAPISpecServed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "yaml")
}
