// Package preview serves the dual-pane page over HTTP so the controller can
// be driven from a browser.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/controller"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/logger"
	"github.com/oukeidos/panetrans/internal/render"
	"github.com/oukeidos/panetrans/internal/status"
)

const (
	// RefreshDebounce coalesces bursts of state changes into one page
	// refresh.
	RefreshDebounce = 100 * time.Millisecond
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 5 * time.Second

	requestIDHeader = "X-Request-ID"
)

type Server struct {
	ctrl    *controller.Controller
	engine  *gin.Engine
	hub     *hub
	refresh func(func())
	log     *slog.Logger
	stop    func()

	// base scopes controller work. It outlives individual requests because
	// a page reload drops the request that started a translation.
	base context.Context
}

// New wires a server to ctrl. The server takes over the OnChange hooks of
// ctrl and its view.
func New(ctrl *controller.Controller) *Server {
	gin.SetMode(gin.ReleaseMode)

	log := logger.Component("preview")
	s := &Server{
		ctrl:    ctrl,
		hub:     newHub(log),
		refresh: debounce.New(RefreshDebounce),
		log:     log,
		base:    context.Background(),
	}

	ctrl.OnChange(s.scheduleRefresh)
	ctrl.View().OnChange(s.viewChanged)
	updates, cancel := ctrl.Board().Subscribe()
	s.stop = cancel
	go func() {
		for msg := range updates {
			m := msg
			s.hub.broadcast(Event{Type: "status", Status: &m})
		}
	}()

	s.engine = s.routes()
	return s
}

func (s *Server) scheduleRefresh() {
	s.refresh(func() {
		s.hub.broadcast(Event{Type: "refresh"})
	})
}

// viewChanged forwards timer-driven view updates. An expired click highlight
// is cleared in place; re-synced heights need a fresh page.
func (s *Server) viewChanged(ch render.Change) {
	if ch == render.ChangeHighlight {
		s.hub.broadcast(Event{Type: "highlight"})
		return
	}
	s.scheduleRefresh()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = intake.MaxFileBytes
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/", s.handlePage)
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/session", s.handleSession)
	api.POST("/files", s.handleFiles)
	api.POST("/actions/:action", s.handleAction)
	api.GET("/export/:name", s.handleExport)
	api.GET("/images/:index", s.handleImage)
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Close stops status forwarding and disconnects every page.
func (s *Server) Close() {
	s.stop()
	s.hub.closeAll()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.base = ctx
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info("Preview available", "addr", addr, "url", "http://"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		s.Close()
		return err
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		start := time.Now()
		c.Next()
		s.log.Debug("Request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", id)
	}
}

func (s *Server) handlePage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.ctrl.Page(c.Writer); err != nil {
		s.log.Error("Failed to render page", "error", err)
	}
}

func (s *Server) handleWS(c *gin.Context) {
	s.hub.serve(c, s.ctrl.Board().Current())
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

type actionResponse struct {
	controller.Result
	Status status.Message `json:"status"`
}

type errorResponse struct {
	Error  string         `json:"error"`
	Status status.Message `json:"status"`
}

func (s *Server) handleFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.fail(c, apperrors.BadRequest("expected a multipart upload"))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		s.fail(c, apperrors.BadRequest("no files in upload"))
		return
	}

	files := make([]intake.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			s.fail(c, err)
			return
		}
		files = append(files, f)
	}

	res, err := s.ctrl.Dispatch(s.base, controller.Command{Action: "select_files", Files: files})
	if err != nil {
		s.fail(c, err)
		return
	}
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, actionResponse{Result: res, Status: s.ctrl.Board().Current()})
}

func readPart(fh *multipart.FileHeader) (intake.File, error) {
	if fh.Size > intake.MaxFileBytes {
		return nil, apperrors.BadRequest(fmt.Sprintf("%s exceeds the %d MB upload limit", fh.Filename, intake.MaxFileBytes>>20))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, intake.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > intake.MaxFileBytes {
		return nil, apperrors.BadRequest(fmt.Sprintf("%s exceeds the %d MB upload limit", fh.Filename, intake.MaxFileBytes>>20))
	}
	return intake.MemFile(fh.Filename, data), nil
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func (s *Server) handleAction(c *gin.Context) {
	var cmd controller.Command
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
			s.fail(c, apperrors.BadRequest("invalid action body: "+err.Error()))
			return
		}
	}
	cmd.Action = c.Param("action")
	if cmd.Action == "select_files" {
		s.fail(c, apperrors.BadRequest("use /api/files to select files"))
		return
	}

	res, err := s.ctrl.Dispatch(s.base, cmd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, actionResponse{Result: res, Status: s.ctrl.Board().Current()})
}

func (s *Server) handleExport(c *gin.Context) {
	name := c.Param("name")
	res, ok := s.ctrl.LastExport(name)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no export named %q", name), Status: s.ctrl.Board().Current()})
		return
	}
	contentType := res.ContentType
	if contentType == "" {
		contentType = intake.DetectContentType(res.Data())
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
	c.Data(http.StatusOK, contentType, res.Data())
}

func (s *Server) handleImage(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.fail(c, apperrors.BadRequest("image index must be a number"))
		return
	}
	_, data, err := s.ctrl.PreviewImage(n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, intake.DetectContentType(data), data)
}

func (s *Server) fail(c *gin.Context, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		s.log.Warn("Request failed", "path", c.FullPath(), "status", code, "error", err)
	}
	c.JSON(code, errorResponse{Error: apperrors.PublicMessage(err), Status: s.ctrl.Board().Current()})
}

// httpStatus maps controller and backend failures onto response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, controller.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, controller.ErrNothingToExport),
		errors.Is(err, controller.ErrNoContent),
		errors.Is(err, controller.ErrRecognitionFailed),
		errors.Is(err, intake.ErrImagesOnly):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperrors.KindBadRequest:
		return http.StatusBadRequest
	case apperrors.KindBusy:
		return http.StatusConflict
	case apperrors.KindBackend, apperrors.KindTransport, apperrors.KindValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
