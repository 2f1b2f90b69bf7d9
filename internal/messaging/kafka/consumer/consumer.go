package consumer

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrUnprocessable marks a message that will never succeed, e.g. a payload
// that does not decode. Such messages are committed so the group moves past
// them.
var ErrUnprocessable = errors.New("unprocessable message")

// MessageReader is the subset of *kafkago.Reader the consume loop uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type HandlerFunc func(ctx context.Context, msg kafkago.Message) error

// Run fetches messages until ctx is done. A message is committed after
// handle succeeds or reports ErrUnprocessable; any other error leaves it
// uncommitted.
func Run(ctx context.Context, reader MessageReader, handle HandlerFunc, log *zap.Logger) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		fields := []zap.Field{
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		}

		if err := handle(ctx, msg); err != nil {
			if !errors.Is(err, ErrUnprocessable) {
				log.Error("handle message failed", append(fields, zap.Error(err))...)
				continue
			}
			log.Warn("skipping unprocessable message", append(fields, zap.Error(err))...)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", append(fields, zap.Error(err))...)
		}
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
