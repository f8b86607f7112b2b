// Package contentserver is a development implementation of the content
// service backed by SQLite. It speaks the same JSON contract the studio
// client consumes, so the tool can run end to end without the hosted service.
package contentserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

const defaultTitle = "Untitled Story"

// Server serves the content API for one store
type Server struct {
	store *Store
	token string
}

// New creates a server. An empty token disables the bearer check.
func New(store *Store, token string) *Server {
	return &Server{store: store, token: token}
}

// errorResponse writes the {"detail": ...} body every error shares
func errorResponse(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (s *Server) storeError(c *gin.Context, what string, err error) {
	if errors.Is(err, ErrNotFound) {
		errorResponse(c, http.StatusNotFound, what+" not found")
		return
	}
	slog.Error("content store failure", "path", c.Request.URL.Path, "error", err)
	errorResponse(c, http.StatusInternalServerError, "Failed to access "+strings.ToLower(what))
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/projects", s.authMiddleware())
	api.POST("", s.createProject)
	api.GET("/:id", s.getProject)
	api.GET("/:id/title", s.getTitle)
	api.PUT("/:id/title", s.updateTitle)
	api.GET("/:id/pages/:n", s.getPage)
	api.PUT("/:id/pages/:n", s.updatePage)
	api.POST("/:id/pages", s.addPage)
	api.DELETE("/:id/pages/:n", s.deletePage)
	api.POST("/:id/generate", s.generate)
	api.POST("/:id/chat", s.chat)
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			errorResponse(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			errorResponse(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}
		c.Next()
	}
}

func pageNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		errorResponse(c, http.StatusBadRequest, "Page number must be a positive integer")
		return 0, false
	}
	return n, true
}

type createProjectRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DraftTitle(req.Prompt)
	}
	if title == "" {
		title = defaultTitle
	}

	p, err := s.store.CreateProject(c.Request.Context(), title, strings.TrimSpace(req.Prompt))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getTitle(c *gin.Context) {
	p, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectTitle{ID: p.ID, Title: p.Title})
}

func (s *Server) updateTitle(c *gin.Context) {
	var req models.ProjectTitle
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		errorResponse(c, http.StatusUnprocessableEntity, "Title must not be empty")
		return
	}

	t, err := s.store.UpdateTitle(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) getPage(c *gin.Context) {
	n, ok := pageNumber(c)
	if !ok {
		return
	}
	page, err := s.store.GetPage(c.Request.Context(), c.Param("id"), n)
	if err != nil {
		s.storeError(c, "Page", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) updatePage(c *gin.Context) {
	n, ok := pageNumber(c)
	if !ok {
		return
	}
	var update models.PageUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if update.Empty() {
		errorResponse(c, http.StatusBadRequest, "No fields to update")
		return
	}

	page, err := s.store.UpdatePage(c.Request.Context(), c.Param("id"), n, update)
	if err != nil {
		s.storeError(c, "Page", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type addPageRequest struct {
	Content models.PageContent `json:"content"`
}

func (s *Server) addPage(c *gin.Context) {
	var req addPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	page, err := s.store.AddPage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": page})
}

func (s *Server) deletePage(c *gin.Context) {
	n, ok := pageNumber(c)
	if !ok {
		return
	}
	if err := s.store.DeletePage(c.Request.Context(), c.Param("id"), n); err != nil {
		s.storeError(c, "Page", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "Page deleted successfully",
		"deleted_page_number": n,
	})
}

func (s *Server) generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Concept) == "" {
		errorResponse(c, http.StatusUnprocessableEntity, "Concept must not be empty")
		return
	}

	ctx := c.Request.Context()
	current, err := s.store.GetProject(ctx, c.Param("id"))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	title := ""
	if current.Title == defaultTitle {
		title = DraftTitle(req.Concept)
	}

	p, err := s.store.ReplacePages(ctx, current.ID, title, DraftPages(req))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}
	slog.Info("project generated", "project", p.ID, "pages", len(p.Pages), "style", req.Style)
	c.JSON(http.StatusOK, p)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		errorResponse(c, http.StatusUnprocessableEntity, "Message must not be empty")
		return
	}

	ctx := c.Request.Context()
	p, err := s.store.GetProject(ctx, c.Param("id"))
	if err != nil {
		s.storeError(c, "Project", err)
		return
	}

	if ClassifyChat(req.Message) == models.ChatActionQuestion {
		c.JSON(http.StatusOK, models.ChatReply{
			AssistantMessage: fmt.Sprintf("%q has %d pages. Ask me to change a page, for example \"make page 1 funnier\".", p.Title, len(p.Pages)),
			Action:           models.ChatActionQuestion,
		})
		return
	}

	n := EditTarget(req.Message)
	if n < 1 || n > len(p.Pages) {
		c.JSON(http.StatusOK, models.ChatReply{
			AssistantMessage: "Tell me which page to change, for example \"page 2\".",
			Action:           models.ChatActionQuestion,
		})
		return
	}

	text := strings.TrimSpace(p.Pages[n-1].ScriptText + " (" + strings.TrimSpace(req.Message) + ")")
	if _, err := s.store.UpdatePage(ctx, p.ID, n, models.PageUpdate{ScriptText: &text}); err != nil {
		s.storeError(c, "Page", err)
		return
	}
	c.JSON(http.StatusOK, models.ChatReply{
		AssistantMessage: fmt.Sprintf("I noted your request on page %d.", n),
		Action:           models.ChatActionEdit,
	})
}
