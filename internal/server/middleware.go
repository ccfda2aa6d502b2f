package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey   = "requestID"
	currentUserKey = "currentUser"
)

// RequestLogger logs one line per request; the level follows the status.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		requestID := ctx.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx.Set(requestIDKey, requestID)
		ctx.Header("X-Request-ID", requestID)

		ctx.Next()

		status := ctx.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if len(ctx.Errors) > 0 {
			event = event.Str("errors", ctx.Errors.String())
		}
		event.
			Str("request_id", requestID).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", ctx.ClientIP()).
			Msg("request")
	}
}

// RequireUser resolves the bearer token to a stored user and aborts with a
// plain-text 401 when that fails.
func (api *API) RequireUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := api.authenticate(ctx)
		if err != nil {
			ctx.String(http.StatusUnauthorized, err.Error())
			ctx.Abort()
			return
		}
		ctx.Set(currentUserKey, user)
		ctx.Next()
	}
}

func (api *API) authenticate(ctx *gin.Context) (*models.User, error) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errors.ErrUnauthorized
	}
	claims, err := api.tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
	if err != nil {
		return nil, err
	}
	user, err := api.users.GetByUsername(ctx.Request.Context(), claims.Username())
	if err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			return nil, errors.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func currentUser(ctx *gin.Context) *models.User {
	if v, ok := ctx.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// gzipBody closes both the gzip reader and the original request body.
type gzipBody struct {
	*gzip.Reader
	body io.Closer
}

func (b *gzipBody) Close() error {
	gzErr := b.Reader.Close()
	if err := b.body.Close(); err != nil {
		return err
	}
	return gzErr
}

// GzipRequestDecompress transparently inflates gzip-encoded request bodies.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}
		gr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, errorBody(errors.ErrInvalidGzipRequest.Error()))
			return
		}
		ctx.Request.Body = &gzipBody{Reader: gr, body: ctx.Request.Body}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1
		ctx.Next()
	}
}

const minCompressSize = 1024

// bufferedWriter holds the response body until the handler chain returns so
// the compression decision can look at the final size and headers.
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Size() int {
	return w.buf.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.buf.Len() > 0 || w.ResponseWriter.Written()
}

func (w *bufferedWriter) shouldCompress() bool {
	if w.buf.Len() < minCompressSize {
		return false
	}
	switch w.ResponseWriter.Status() {
	case http.StatusNoContent, http.StatusNotModified, http.StatusPartialContent:
		return false
	}
	h := w.ResponseWriter.Header()
	return h.Get("Content-Encoding") == "" && isCompressibleContentType(h.Get("Content-Type"))
}

func (w *bufferedWriter) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	if !w.shouldCompress() {
		_, err := w.ResponseWriter.Write(w.buf.Bytes())
		return err
	}

	h := w.ResponseWriter.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	gw := gzip.NewWriter(w.ResponseWriter)
	if _, err := gw.Write(w.buf.Bytes()); err != nil {
		return errors.ErrGzipCompressionFailed
	}
	if err := gw.Close(); err != nil {
		return errors.ErrGzipCompressionFailed
	}
	return nil
}

// GzipResponseCompress compresses text and JSON responses of at least
// minCompressSize bytes for clients that accept gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}
		addVary(ctx.Writer.Header(), "Accept-Encoding")

		original := ctx.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		ctx.Writer = bw
		ctx.Next()
		ctx.Writer = original

		if err := bw.flush(); err != nil {
			_ = ctx.Error(err)
		}
	}
}

func addVary(h http.Header, value string) {
	vary := h.Get("Vary")
	switch {
	case vary == "":
		h.Set("Vary", value)
	case !strings.Contains(vary, value):
		h.Set("Vary", vary+", "+value)
	}
}

func isCompressibleContentType(ct string) bool {
	lower := strings.ToLower(ct)
	if lower == "" || strings.HasPrefix(lower, "text/event-stream") {
		return false
	}
	for _, prefix := range []string{"application/json", "application/xml", "application/javascript", "text/"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
