// Package notifications delivers transactional email to users.
package notifications

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/middleware"
)

// mailQueueKey is the Redis list holding pending outbound email.
const mailQueueKey = "mail:outbox"

// Email is a single outbound message.
type Email struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// LogSender logs email instead of delivering it. It backs development and
// test environments where no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, email Email) error {
	middleware.Logger.InfoContext(ctx, "email delivery skipped (no SMTP host configured)",
		"id", email.ID, "to", email.To, "subject", email.Subject)
	return nil
}

// Mailer queues email through a Redis list and drains it with a background
// worker. Without Redis it degrades to sending from a goroutine, so callers
// never block on SMTP either way.
type Mailer struct {
	rdb    *redis.Client
	sender Sender
}

// NewMailer creates a Mailer using the provided Redis client and sender.
// rdb may be nil.
func NewMailer(rdb *redis.Client, sender Sender) *Mailer {
	return &Mailer{rdb: rdb, sender: sender}
}

// Enqueue schedules an email for delivery. The email is assigned an ID if it
// does not carry one.
func (m *Mailer) Enqueue(ctx context.Context, email Email) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}

	if m.rdb == nil {
		go m.deliver(context.WithoutCancel(ctx), email)
		return nil
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}
	if err := m.rdb.LPush(ctx, mailQueueKey, payload).Err(); err != nil {
		// Queue unavailable; fall back to direct delivery rather than
		// dropping the message.
		middleware.Logger.WarnContext(ctx, "mail queue unavailable, sending directly", "error", err)
		go m.deliver(context.WithoutCancel(ctx), email)
	}
	return nil
}

// StartWorker drains the queue until ctx is cancelled. It is a no-op without
// Redis, because Enqueue already delivers directly in that mode.
func (m *Mailer) StartWorker(ctx context.Context) {
	if m.rdb == nil {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := m.rdb.BRPop(ctx, 5*time.Second, mailQueueKey).Result()
			if err != nil {
				continue
			}
			// BRPop returns [key, value].
			if len(res) != 2 {
				continue
			}

			var email Email
			if err := json.Unmarshal([]byte(res[1]), &email); err != nil {
				middleware.Logger.WarnContext(ctx, "dropping malformed mail job", "error", err)
				continue
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						middleware.Logger.ErrorContext(ctx, "panic in mail worker",
							"panic", r, "stack", string(debug.Stack()))
					}
				}()
				m.deliver(ctx, email)
			}()
		}
	}()
}

func (m *Mailer) deliver(ctx context.Context, email Email) {
	if err := m.sender.Send(ctx, email); err != nil {
		middleware.Logger.ErrorContext(ctx, "email delivery failed",
			"id", email.ID, "to", email.To, "error", err)
		return
	}
	middleware.Logger.InfoContext(ctx, "email delivered", "id", email.ID, "to", email.To)
}
