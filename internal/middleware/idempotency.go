package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v2:"

	keyStateInProgress = "in_progress"
	keyStateDone       = "done"
)

// keyRecord binds an Idempotency-Key to the one request it was first used
// with. Responses are not stored: the processor's message id log is the only
// source of truth for whether an operation was applied.
type keyRecord struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	MessageID   string `json:"messageId"`
	Status      int    `json:"status,omitempty"`
}

// keyedRequest holds the fields of a load or authorization that identify it.
type keyedRequest struct {
	MessageID         string `json:"messageId"`
	UserID            string `json:"userId"`
	TransactionAmount struct {
		Amount        string `json:"amount"`
		Currency      string `json:"currency"`
		DebitOrCredit string `json:"debitOrCredit"`
	} `json:"transactionAmount"`
}

func (r keyedRequest) fingerprint() string {
	var b strings.Builder
	for _, part := range []string{
		r.MessageID, r.UserID,
		r.TransactionAmount.Amount, r.TransactionAmount.Currency, r.TransactionAmount.DebitOrCredit,
	} {
		b.WriteString(part)
		b.WriteByte(0)
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func idempotencyCacheKey(path, userID, key string) string {
	return idempotencyPrefix + path + ":" + userID + ":" + key
}

// Idempotency guards unsafe requests carrying an Idempotency-Key header.
// Keys are scoped per path and user. Reusing a key for a different request
// is rejected with 422 and a concurrent request with the same key gets 409.
// A repeat of a completed request is forwarded, so the processor answers it
// (normally with DUPLICATE_OPERATION_ID). Requests without the header pass
// through.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch strings.ToUpper(c.Method()) {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := c.Get(idempotencyKeyHeader)
		if key == "" {
			return c.Next()
		}

		// Malformed bodies fingerprint as empty; the handler rejects them
		// and the reservation is released.
		var req keyedRequest
		_ = json.Unmarshal(c.Body(), &req)
		fp := req.fingerprint()
		cacheKey := idempotencyCacheKey(c.Path(), req.UserID, key)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		existing, err := loadKeyRecord(ctx, cache, cacheKey)
		switch {
		case err != nil:
			logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		case existing != nil:
			return checkExisting(c, existing, fp)
		}

		reservation, err := json.Marshal(keyRecord{State: keyStateInProgress, Fingerprint: fp, MessageID: req.MessageID})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency reservation failure")
		}
		reserved, err := cache.SetNX(ctx, cacheKey, reservation, ttl).Result()
		if err != nil {
			logger.Error("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency reservation failure")
		}
		if !reserved {
			// Lost the race to a concurrent request; judge against its record.
			existing, err := loadKeyRecord(ctx, cache, cacheKey)
			if err != nil || existing == nil {
				return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
			}
			return checkExisting(c, existing, fp)
		}

		if err := c.Next(); err != nil {
			// The request changed nothing; free the key for a corrected retry.
			cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cleanupCancel()
			cache.Del(cleanupCtx, cacheKey)
			return err
		}

		done, err := json.Marshal(keyRecord{
			State:       keyStateDone,
			Fingerprint: fp,
			MessageID:   req.MessageID,
			Status:      c.Response().StatusCode(),
		})
		if err != nil {
			logger.Error("failed to encode idempotency record", slog.String("key", key), slog.Any("error", err))
			return nil
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer persistCancel()
		if err := cache.Set(persistCtx, cacheKey, done, ttl).Err(); err != nil {
			// The operation is applied; the response must still go out.
			logger.Error("failed to persist idempotency record", slog.String("key", key), slog.Any("error", err))
		}
		return nil
	}
}

func loadKeyRecord(ctx context.Context, cache *redis.Client, cacheKey string) (*keyRecord, error) {
	raw, err := cache.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec keyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func checkExisting(c *fiber.Ctx, rec *keyRecord, fp string) error {
	if rec.Fingerprint != fp {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
	}
	if rec.State == keyStateInProgress {
		return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
	}
	return c.Next()
}
