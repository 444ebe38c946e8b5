package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kapee/pkg/logger"
)

type memCollection struct {
	mu   sync.Mutex
	docs []logger.LogDocument
}

func (c *memCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		c.docs = append(c.docs, d.(logger.LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoSinkStoresRecordsAtLevel(t *testing.T) {
	col := &memCollection{}
	sink := logger.NewMongoSink(col, slog.LevelWarn)
	log := slog.New(sink).With("request_id", "req-1")

	log.Info("ignored")
	log.Warn("cart busy", "user_id", "u1")
	log.Error("order written but cart not deleted", "error", errors.New("deadline exceeded"))
	sink.Close()
	sink.Close()

	require.Len(t, col.docs, 2)
	assert.Equal(t, "cart busy", col.docs[0].Msg)
	assert.Equal(t, "WARN", col.docs[0].Level)
	assert.Equal(t, "req-1", col.docs[0].RequestID)
	assert.Equal(t, "u1", col.docs[0].Attrs["user_id"])
	assert.Equal(t, "ERROR", col.docs[1].Level)
	assert.Equal(t, "deadline exceeded", col.docs[1].Attrs["error"])
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(logger.NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("hello")
	assert.Contains(t, a.String(), "hello")
	assert.Empty(t, b.String())
}
