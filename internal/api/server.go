// Package api serves token probes over HTTP.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/probe"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Prober runs one probe. *probe.Service implements it.
type Prober interface {
	Probe(ctx context.Context, req probe.Request) (*probe.Result, error)
}

type Server struct {
	prober   Prober
	log      logger.Logger
	shutdown func()
	once     sync.Once
}

// NewServer returns a Server. shutdown is called once, after the response to
// the first POST /shutdown has been written; it may be nil.
func NewServer(prober Prober, log logger.Logger, shutdown func()) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{prober: prober, log: log, shutdown: shutdown}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)
	e.POST("/props", s.handleProps)
	e.POST("/shutdown", s.handleShutdown)
	e.GET("/health", s.handleHealth)
}

// requestID echoes an incoming X-Request-ID or assigns a fresh one.
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

func (s *Server) handleProps(c *echo.Context) error {
	req, err := readProps(c.Request().Body)
	if err != nil {
		return s.fail(c, err)
	}

	res, err := s.prober.Probe(c.Request().Context(), probe.Request{
		Prompt:  req.Prompt,
		Targets: req.TargetChars,
		TopK:    req.TopK,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, PropsResponse{
		Tokens:       res.Tokens,
		PromptTokens: res.PromptTokens,
		Top:          res.Top,
	})
}

// readProps reads, validates and decodes a /props body.
func readProps(r io.Reader) (PropsRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return PropsRequest{}, newInvalidRequest(fmt.Sprintf("read body: %v", err))
	}
	if len(body) > maxBodyBytes {
		return PropsRequest{}, ErrBodyTooLarge
	}
	if !json.Valid(body) {
		return PropsRequest{}, newInvalidRequest("invalid JSON body")
	}
	if err := validateProps(body); err != nil {
		return PropsRequest{}, err
	}
	req, err := decodeJSON[PropsRequest](bytes.NewReader(body))
	if err != nil {
		return PropsRequest{}, newInvalidRequest(err.Error())
	}
	return req, nil
}

// fail writes err as an ErrorResponse with the status statusFor assigns.
func (s *Server) fail(c *echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("probe failed", "error", err, "request_id", c.Response().Header().Get(headerRequestID))
	}
	return writeError(c, status, err.Error())
}

func (s *Server) handleShutdown(c *echo.Context) error {
	if err := c.JSON(http.StatusOK, MessageResponse{Message: "Shutting down"}); err != nil {
		return err
	}
	s.once.Do(func() {
		s.log.Info("shutdown requested", "request_id", c.Response().Header().Get(headerRequestID))
		if s.shutdown != nil {
			s.shutdown()
		}
	})
	return nil
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
