package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/surveylogic"
	"github.com/aretw0/surveylogic/internal/testutils"
	api "github.com/aretw0/surveylogic/pkg/adapters/http"
	"github.com/aretw0/surveylogic/pkg/adapters/memory"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/observability"
	"github.com/aretw0/surveylogic/pkg/persistence/middleware"
	"github.com/aretw0/surveylogic/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const branchingSurvey = `
id: onboarding
questions:
  - id: role
    text: What is your role?
    type: single_choice
    required: true
    options: [dev, manager]
  - id: language
    text: Favourite language?
    logic:
      - source: role
        operator: equals
        value: dev
        action: show
  - id: team_size
    text: How big is your team?
    type: number
    logic:
      - source: role
        operator: equals
        value: dev
        action: hide
      - id: stop
        source: team_size
        operator: greater_than
        value: "500"
        action: end_survey
  - id: feedback
    text: Anything else?
`

func newEngine(t *testing.T, docs ...string) *surveylogic.Engine {
	t.Helper()
	loader, err := memory.NewFromDocuments(docs...)
	require.NoError(t, err)
	eng, err := surveylogic.New("", surveylogic.WithLoader(loader))
	require.NoError(t, err)
	return eng
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) api.SessionResponse {
	t.Helper()
	var resp api.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestEvaluateLogic_Fixtures(t *testing.T) {
	for _, f := range testutils.LoadFixtures(t) {
		loader, err := memory.NewLoader(f.Survey)
		require.NoError(t, err)
		eng, err := surveylogic.New("", surveylogic.WithLoader(loader))
		require.NoError(t, err)
		h := api.NewHandler(eng)

		for _, c := range f.Cases {
			t.Run(f.Name+"/"+c.Name, func(t *testing.T) {
				w := do(t, h, http.MethodPost, "/api/surveys/"+f.Survey.ID+"/evaluate-logic", c.Request)
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())

				var resp domain.EvaluateResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, c.Expect, resp)
			})
		}
	}
}

func TestEvaluateLogic_WireShape(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	body := `{"currentQuestionId":"team_size","answers":[{"questionId":"role","value":"manager"},{"questionId":"team_size","value":900}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/surveys/onboarding/evaluate-logic", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, []any{"role", "team_size"}, raw["visibleQuestionIds"])
	assert.Equal(t, []any{"language", "feedback"}, raw["hiddenQuestionIds"])
	assert.Equal(t, true, raw["shouldEndSurvey"])
	_, hasNext := raw["nextQuestionId"]
	assert.False(t, hasNext, "no next question once the survey ends")
}

func TestEvaluateLogic_Errors(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	w := do(t, h, http.MethodPost, "/api/surveys/missing/evaluate-logic", domain.EvaluateRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/surveys/onboarding/evaluate-logic", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogicMapAndSurveys(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	w := do(t, h, http.MethodGet, "/api/surveys/onboarding/logic-map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m domain.LogicMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Len(t, m.Nodes, 4)
	assert.Len(t, m.Edges, 3)

	w = do(t, h, http.MethodGet, "/api/surveys", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"surveys":["onboarding"]}`, w.Body.String())
}

func TestSessionFlow(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	w := do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "s1", "shareToken": "link-7"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decodeSession(t, w)
	assert.Equal(t, "s1", view.SessionID)
	assert.Equal(t, []string{"role", "team_size", "feedback"}, view.VisibleQuestionIDs)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "role", view.CurrentQuestion.ID)

	// Required question blocks navigation.
	w = do(t, h, http.MethodPost, "/api/sessions/s1/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPut, "/api/sessions/s1/answers/role", map[string]any{"value": "dev"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decodeSession(t, w)
	assert.Equal(t, []string{"role", "language", "feedback"}, view.VisibleQuestionIDs)

	w = do(t, h, http.MethodPost, "/api/sessions/s1/next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decodeSession(t, w)
	require.NotNil(t, view.Step)
	assert.Equal(t, "language", view.Step.QuestionID)
	assert.Equal(t, 1, view.CurrentIndex)
	assert.True(t, view.CanGoPrevious)

	w = do(t, h, http.MethodPost, "/api/sessions/s1/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeSession(t, w)
	require.NotNil(t, view.Moved)
	assert.True(t, *view.Moved)
	assert.Equal(t, 0, view.CurrentIndex)

	// State survives between requests.
	w = do(t, h, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeSession(t, w)
	assert.Equal(t, "dev", view.Answers["role"].Text)
	assert.Equal(t, domain.StatusInProgress, view.Status)

	w = do(t, h, http.MethodDelete, "/api/sessions/s1/answers/role", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeSession(t, w)
	assert.Equal(t, []string{"role", "team_size", "feedback"}, view.VisibleQuestionIDs)
}

func TestSession_EndSurveyCompletes(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "s2"}).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/sessions/s2/answers/role", map[string]any{"value": "manager"}).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/sessions/s2/answers/team_size", map[string]any{"value": 900}).Code)

	w := do(t, h, http.MethodPost, "/api/sessions/s2/next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decodeSession(t, w)
	require.NotNil(t, view.Step)
	assert.True(t, view.Step.End)
	assert.Equal(t, domain.StepEndSurvey, view.Step.Reason)
	assert.Equal(t, domain.StatusCompleted, view.Status)

	w = do(t, h, http.MethodGet, "/api/sessions/s2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusCompleted, decodeSession(t, w).Status)

	w = do(t, h, http.MethodPut, "/api/sessions/s2/answers/feedback", map[string]any{"value": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSession_Errors(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/surveys/nope/sessions", nil).Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "s3"}).Code)
	w := do(t, h, http.MethodPut, "/api/sessions/s3/answers/ghost", map[string]any{"value": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/sessions/s3/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeSession(t, w)
	require.NotNil(t, view.Moved)
	assert.False(t, *view.Moved)
}

func TestSession_StartGeneratesID(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))

	w := do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decodeSession(t, w)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, "onboarding", view.SurveyID)
}

func TestSession_OtherSurveyConflicts(t *testing.T) {
	other := "id: feedback\nquestions:\n  - id: q1\n    text: Thoughts?\n"
	h := api.NewHandler(newEngine(t, branchingSurvey, other))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "s4"}).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/sessions/s4/answers/role", map[string]any{"value": "dev"}).Code)

	w := do(t, h, http.MethodPost, "/api/surveys/feedback/sessions", map[string]string{"sessionId": "s4"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/sessions/s4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeSession(t, w)
	assert.Equal(t, "onboarding", view.SurveyID)
	assert.Equal(t, "dev", view.Answers["role"].Text)
}

func TestSession_RedactedAnswersStillDriveLogic(t *testing.T) {
	redact, err := middleware.NewPIIMiddleware([]string{"^role$"}, middleware.EncryptionConfig{ActiveKey: make([]byte, 32)})
	require.NoError(t, err)
	store := memory.NewStore()
	h := api.NewHandler(newEngine(t, branchingSurvey),
		api.WithSessionManager(session.NewManager(middleware.Chain(store, redact))))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "s5"}).Code)
	w := do(t, h, http.MethodPut, "/api/sessions/s5/answers/role", map[string]any{"value": "dev"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"role", "language", "feedback"}, decodeSession(t, w).VisibleQuestionIDs)

	stored, err := store.Load(context.Background(), "s5")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Answers.Get("role").Text)

	w = do(t, h, http.MethodGet, "/api/sessions/s5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeSession(t, w)
	assert.Equal(t, []string{"role", "language", "feedback"}, view.VisibleQuestionIDs)
	assert.Equal(t, "dev", view.Answers["role"].Text)

	w = do(t, h, http.MethodPost, "/api/sessions/s5/next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decodeSession(t, w)
	require.NotNil(t, view.Step)
	assert.Equal(t, "language", view.Step.QuestionID)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	loader, err := memory.NewFromDocuments(branchingSurvey)
	require.NoError(t, err)
	eng, err := surveylogic.New("", surveylogic.WithLoader(loader), surveylogic.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h := api.NewHandler(eng, api.WithMetrics(reg))

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/surveys/onboarding/evaluate-logic", domain.EvaluateRequest{}).Code)

	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `surveylogic_evaluations_total{end_survey="false"} 1`)
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv := api.NewServer(newEngine(t, branchingSurvey))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	h := srv.Handler()

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/surveys/onboarding/sessions", map[string]string{"sessionId": "live"}).Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/sessions/live/events?watch=visibility", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return srv.Streams().Subscribers("live") == 1 }, time.Second, 10*time.Millisecond)

	// Moving the cursor alone is filtered out by watch=visibility.
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/sessions/live/answers/role", map[string]any{"value": "manager"}).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/sessions/live/next", nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/sessions/live/answers/role", map[string]any{"value": "dev"}).Code)

	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}

	var diff domain.VisibilityDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	assert.Equal(t, "live", diff.SessionID)
	assert.Equal(t, []string{"language"}, diff.Shown)
	assert.Equal(t, []string{"team_size"}, diff.Hidden)
}

func TestSubscribeEvents_UnknownSession(t *testing.T) {
	h := api.NewHandler(newEngine(t, branchingSurvey))
	w := do(t, h, http.MethodGet, "/api/sessions/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
