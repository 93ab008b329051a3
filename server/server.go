package server

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ai_content_generator/artifact"
	"ai_content_generator/errs"
	"ai_content_generator/generator"
	"ai_content_generator/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SessionHeader   = "X-Session-ID"
	RequestIDHeader = "X-Request-ID"
	corsMaxAge      = 12 * time.Hour
)

// Options configures the HTTP surface.
type Options struct {
	WordRange      generator.WordRange
	MetricsPath    string // empty disables /metrics
	AllowedOrigins []string
}

type Server struct {
	agent *generator.Agent
	store *sessionStore
	opts  Options
}

// sessionEntry pairs a session with its in-flight flag. A session runs one
// generation at a time.
type sessionEntry struct {
	sess *generator.Session
	busy atomic.Bool
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *sessionStore) getOrCreate(id string, agent *generator.Agent) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &sessionEntry{sess: generator.NewSession(id, agent)}
		s.sessions[id] = e
	}
	return e
}

func (s *sessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func New(agent *generator.Agent, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if opts.WordRange == (generator.WordRange{}) {
		opts.WordRange = generator.DefaultWordRange()
	}
	return &Server{
		agent: agent,
		store: newStore(),
		opts:  opts,
	}, nil
}

func (s *Server) Routes() *gin.Engine {
	router := gin.New()

	router.Use(cors.New(s.corsConfig()))
	router.Use(requestContext())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.opts.MetricsPath != "" {
		router.GET(s.opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	api.GET("/options", s.handleOptions)
	api.POST("/generations", s.handleGenerate)
	api.GET("/history", s.handleHistory)
	api.GET("/history/:id/download", s.handleDownload)

	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cache-Control", SessionHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", SessionHeader, RequestIDHeader},
		MaxAge:        corsMaxAge,
	}
	if len(s.opts.AllowedOrigins) == 0 || slices.Contains(s.opts.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.opts.AllowedOrigins
	}
	return cfg
}

// --- Handlers ---

type generateReq struct {
	Topic       string `json:"topic"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
	WordCount   int    `json:"word_count"`
	Tone        string `json:"tone"`
	Audience    string `json:"audience"`
	ContentType string `json:"content_type"`
}

type historyEntry struct {
	generator.GenerationResult
	DisplayDate string `json:"display_date"`
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tones":         generator.AllTones(),
		"audiences":     generator.AllAudiences(),
		"content_types": generator.AllContentTypes(),
		"word_range":    s.opts.WordRange,
		"defaults": gin.H{
			"tone":         generator.ToneProfessional,
			"audience":     generator.AudienceIntermediate,
			"content_type": generator.ContentBlogPost,
			"word_count":   s.opts.WordRange.Default,
		},
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)

	var body generateReq
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errs.Validation("invalid request body: "+err.Error()))
		return
	}
	req, err := s.toContentRequest(body)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := generator.Validate(req); err != nil {
		writeError(c, err)
		return
	}

	entry := s.store.getOrCreate(id, s.agent)
	if !entry.busy.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"code": "busy", "message": "a generation is already running for this session"})
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, id)
	updates := make(chan string)
	doneCh := make(chan generator.GenerationResult, 1)
	errCh := make(chan error, 1)

	go func() {
		defer entry.busy.Store(false)
		res, err := entry.sess.Run(ctx, req, func(partial string) {
			select {
			case updates <- partial:
			case <-ctx.Done():
			}
		})
		if err != nil {
			errCh <- err
			return
		}
		doneCh <- res
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case partial := <-updates:
			c.SSEvent("update", gin.H{"content": partial})
			return true
		case res := <-doneCh:
			c.SSEvent("done", historyEntry{GenerationResult: res, DisplayDate: res.DisplayDate()})
			return false
		case err := <-errCh:
			c.SSEvent("error", errorBody(err))
			return false
		case <-ctx.Done():
			logger.Warn(ctx, "client disconnected during generation")
			return false
		}
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	items := []historyEntry{}
	if e, ok := s.store.get(c.GetHeader(SessionHeader)); ok {
		for _, r := range e.sess.History.All() {
			items = append(items, historyEntry{GenerationResult: r, DisplayDate: r.DisplayDate()})
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (s *Server) handleDownload(c *gin.Context) {
	e, ok := s.store.get(c.GetHeader(SessionHeader))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "session not found"})
		return
	}
	res, ok := e.sess.History.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "generation not found"})
		return
	}
	format, err := artifact.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, errs.Validation(err.Error()))
		return
	}
	a, err := artifact.New(res, format)
	if err != nil {
		logger.Error(c.Request.Context(), "render artifact failed", err, "id", res.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "render", "message": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+a.FileName+`"`)
	c.Data(http.StatusOK, a.MediaType, a.Body)
}

// --- Helpers ---

// toContentRequest applies defaults for unset choices and clamps the word count.
func (s *Server) toContentRequest(body generateReq) (generator.ContentRequest, error) {
	req := generator.ContentRequest{
		Topic:       body.Topic,
		Keywords:    body.Keywords,
		Description: strings.TrimSpace(body.Description),
		WordCount:   s.opts.WordRange.Clamp(body.WordCount),
		Tone:        generator.ToneProfessional,
		Audience:    generator.AudienceIntermediate,
		ContentType: generator.ContentBlogPost,
	}
	var err error
	if body.Tone != "" {
		if req.Tone, err = generator.ParseTone(body.Tone); err != nil {
			return req, errs.Validation(err.Error())
		}
	}
	if body.Audience != "" {
		if req.Audience, err = generator.ParseAudience(body.Audience); err != nil {
			return req, errs.Validation(err.Error())
		}
	}
	if body.ContentType != "" {
		if req.ContentType, err = generator.ParseContentType(body.ContentType); err != nil {
			return req, errs.Validation(err.Error())
		}
	}
	return req, nil
}

func errorBody(err error) gin.H {
	code := errs.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	body := gin.H{"code": code, "message": err.Error()}
	var e *errs.Error
	if errors.As(err, &e) {
		body["message"] = e.Message
		if e.Err != nil {
			body["detail"] = e.Err.Error()
		}
	}
	return body
}

func writeError(c *gin.Context, err error) {
	c.JSON(errs.Status(err), errorBody(err))
}

// requestContext tags each request with an ID and logs it on completion.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.FromContext(ctx).Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}
