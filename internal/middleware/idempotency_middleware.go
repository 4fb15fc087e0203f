package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 255
)

// IdempotencyStore is satisfied by *redis.IdempotencyStore
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) (*redis.StoredResponse, error)
	Save(ctx context.Context, key string, resp redis.StoredResponse) error
	Release(ctx context.Context, key string) error
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// Keys are scoped to the caller and the request path. Requests without the
// header, or a nil store, pass straight through; so does everything when
// the store is unreachable.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if store == nil || key == "" {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		if len(key) > maxIdempotencyKeyLength {
			errors.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		scoped := strings.Join([]string{userID, c.Request.Method, c.Request.URL.Path, key}, ":")
		ctx := c.Request.Context()

		reserved, err := store.Reserve(ctx, scoped)
		if err != nil {
			log.Warn("Idempotency store unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}

		if !reserved {
			stored, err := store.Load(ctx, scoped)
			switch {
			case err == nil && stored != nil:
				log.Info("Replaying idempotent response", map[string]interface{}{
					"status": stored.Status,
				})
				c.Header(IdempotentReplayedHeader, "true")
				c.Data(stored.Status, stored.ContentType, stored.Body)
			case err == nil || redis.IsMiss(err):
				errors.RespondWithMessage(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			default:
				log.Error("Failed to load idempotent response", err)
				errors.RespondWithMessage(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			}
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(ctx, scoped); err != nil {
				log.Error("Failed to release idempotency key", err)
			}
			return
		}

		resp := redis.StoredResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := store.Save(ctx, scoped, resp); err != nil {
			log.Error("Failed to store idempotent response", err)
		}
	}
}
