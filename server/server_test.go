package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai_content_generator/generator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedLLM replays fragments and then fails with err when set. When gate
// is non-nil it signals started and waits for gate before streaming.
type scriptedLLM struct {
	fragments []string
	err       error
	started   chan struct{}
	gate      chan struct{}
}

func (s *scriptedLLM) Stream(ctx context.Context, _ string) (iter.Seq2[string, error], error) {
	return func(yield func(string, error) bool) {
		if s.gate != nil {
			s.started <- struct{}{}
			select {
			case <-s.gate:
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
		for _, f := range s.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}, nil
}

func newTestServer(t *testing.T, llm generator.LLMClient) *httptest.Server {
	t.Helper()
	agent, err := generator.NewAgent(llm, "scripted")
	require.NoError(t, err)
	srv, err := New(agent, Options{MetricsPath: "/metrics", AllowedOrigins: []string{"*"}})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postGeneration(t *testing.T, ts *httptest.Server, session string, body map[string]any) (*http.Response, string) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/generations", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func getWithSession(t *testing.T, url, session string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func espressoBody() map[string]any {
	return map[string]any{
		"topic":        "Espresso Machines",
		"keywords":     "coffee, espresso, home brewing",
		"word_count":   500,
		"tone":         "professional",
		"audience":     "Intermediate",
		"content_type": "blog-post",
	}
}

type historyResp struct {
	Items []struct {
		ID          string `json:"id"`
		Topic       string `json:"topic"`
		Title       string `json:"title"`
		Content     string `json:"content"`
		DisplayDate string `json:"display_date"`
	} `json:"items"`
	Count int `json:"count"`
}

func TestGenerateStreamsAndRecordsHistory(t *testing.T) {
	ts := newTestServer(t, &scriptedLLM{fragments: []string{"# Espresso ", "Machines\n\nIntro..."}})

	resp, stream := postGeneration(t, ts, "sess-1", espressoBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sess-1", resp.Header.Get(SessionHeader))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	assert.Equal(t, 2, strings.Count(stream, "event:update"))
	assert.Contains(t, stream, "event:done")
	assert.NotContains(t, stream, "event:error")
	assert.Less(t, strings.LastIndex(stream, "event:update"), strings.Index(stream, "event:done"))

	_, data := getWithSession(t, ts.URL+"/api/history", "sess-1")
	var hist historyResp
	require.NoError(t, json.Unmarshal(data, &hist))
	require.Equal(t, 1, hist.Count)
	assert.Equal(t, "Espresso Machines", hist.Items[0].Topic)
	assert.Equal(t, "Espresso Machines", hist.Items[0].Title)
	assert.Equal(t, "# Espresso Machines\n\nIntro...", hist.Items[0].Content)
	assert.NotEmpty(t, hist.Items[0].DisplayDate)

	// Another session sees nothing.
	_, data = getWithSession(t, ts.URL+"/api/history", "sess-2")
	require.NoError(t, json.Unmarshal(data, &hist))
	assert.Zero(t, hist.Count)
}

func TestGenerateAssignsSessionID(t *testing.T) {
	ts := newTestServer(t, &scriptedLLM{fragments: []string{"text"}})

	resp, _ := postGeneration(t, ts, "", espressoBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(SessionHeader))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestGenerateValidation(t *testing.T) {
	llm := &scriptedLLM{fragments: []string{"never"}}
	ts := newTestServer(t, llm)

	body := espressoBody()
	body["keywords"] = "  "
	resp, out := postGeneration(t, ts, "sess-1", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out, `"code":"validation"`)
	assert.Contains(t, out, generator.MissingFieldsMessage)

	body = espressoBody()
	body["tone"] = "sarcastic"
	resp, _ = postGeneration(t, ts, "sess-1", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, data := getWithSession(t, ts.URL+"/api/history", "sess-1")
	var hist historyResp
	require.NoError(t, json.Unmarshal(data, &hist))
	assert.Zero(t, hist.Count)
}

func TestGenerateStreamFailure(t *testing.T) {
	ts := newTestServer(t, &scriptedLLM{fragments: []string{"# Partial"}, err: errors.New("upstream reset")})

	resp, stream := postGeneration(t, ts, "sess-1", espressoBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(stream, "event:update"))
	assert.Contains(t, stream, "event:error")
	assert.Contains(t, stream, `"code":"generation"`)
	assert.Contains(t, stream, "upstream reset")
	assert.NotContains(t, stream, "event:done")

	_, data := getWithSession(t, ts.URL+"/api/history", "sess-1")
	var hist historyResp
	require.NoError(t, json.Unmarshal(data, &hist))
	assert.Zero(t, hist.Count)
}

func TestGenerateRejectsConcurrentRunInSession(t *testing.T) {
	llm := &scriptedLLM{
		fragments: []string{"done"},
		started:   make(chan struct{}, 1),
		gate:      make(chan struct{}),
	}
	ts := newTestServer(t, llm)

	first := make(chan string, 1)
	go func() {
		_, stream := postGeneration(t, ts, "sess-1", espressoBody())
		first <- stream
	}()
	<-llm.started

	resp, _ := postGeneration(t, ts, "sess-1", espressoBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(llm.gate)
	assert.Contains(t, <-first, "event:done")
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t, &scriptedLLM{fragments: []string{"# Espresso Machines\n\nIntro..."}})
	postGeneration(t, ts, "sess-1", espressoBody())

	_, data := getWithSession(t, ts.URL+"/api/history", "sess-1")
	var hist historyResp
	require.NoError(t, json.Unmarshal(data, &hist))
	require.Equal(t, 1, hist.Count)
	id := hist.Items[0].ID

	resp, body := getWithSession(t, ts.URL+"/api/history/"+id+"/download", "sess-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/markdown", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `attachment; filename="content_\d{8}\.md"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "# Espresso Machines\n\nIntro...", string(body))

	resp, body = getWithSession(t, ts.URL+"/api/history/"+id+"/download?format=html", "sess-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "<h1>Espresso Machines</h1>")

	resp, _ = getWithSession(t, ts.URL+"/api/history/"+id+"/download?format=pdf", "sess-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = getWithSession(t, ts.URL+"/api/history/missing/download", "sess-1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = getWithSession(t, ts.URL+"/api/history/"+id+"/download", "other")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptionsHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, generator.MockLLM{})

	resp, data := getWithSession(t, ts.URL+"/api/options", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var opts struct {
		Tones     []string            `json:"tones"`
		WordRange generator.WordRange `json:"word_range"`
		Defaults  map[string]any      `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(data, &opts))
	assert.Contains(t, opts.Tones, "Professional")
	assert.Equal(t, generator.DefaultWordRange(), opts.WordRange)
	assert.Equal(t, "Blog Post", opts.Defaults["content_type"])

	resp, data = getWithSession(t, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))

	resp, _ = getWithSession(t, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToContentRequestDefaultsAndClamp(t *testing.T) {
	agent, err := generator.NewAgent(generator.MockLLM{}, "mock")
	require.NoError(t, err)
	srv, err := New(agent, Options{})
	require.NoError(t, err)

	req, err := srv.toContentRequest(generateReq{Topic: "t", Keywords: "k", WordCount: 99999})
	require.NoError(t, err)
	assert.Equal(t, 2000, req.WordCount)
	assert.Equal(t, generator.ToneProfessional, req.Tone)
	assert.Equal(t, generator.AudienceIntermediate, req.Audience)
	assert.Equal(t, generator.ContentBlogPost, req.ContentType)

	req, err = srv.toContentRequest(generateReq{Topic: "t", Keywords: "k"})
	require.NoError(t, err)
	assert.Equal(t, 500, req.WordCount)

	_, err = srv.toContentRequest(generateReq{ContentType: "poem"})
	assert.Error(t, err)
}
