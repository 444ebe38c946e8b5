package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueueSize = 4096
	sinkBatchSize = 50
	sinkDrainTick = 2 * time.Second
)

// LogDocument is one stored log record.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// Inserter is the part of *mongo.Collection the sink writes through.
type Inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoSink is an slog.Handler that batches records at or above a level into
// a collection from a background goroutine. Handle never blocks: when the
// queue is full the record is dropped.
type MongoSink struct {
	state *sinkState
	level slog.Level
	attrs []slog.Attr
}

type sinkState struct {
	col   Inserter
	queue chan LogDocument
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewMongoSink starts a sink writing to col. Records below level are ignored.
func NewMongoSink(col Inserter, level slog.Level) *MongoSink {
	st := &sinkState{
		col:   col,
		queue: make(chan LogDocument, sinkQueueSize),
		done:  make(chan struct{}),
	}
	st.wg.Add(1)
	go st.drain()
	return &MongoSink{state: st, level: level}
}

// EnsureLogIndex expires stored records after retention.
func EnsureLogIndex(ctx context.Context, col *mongo.Collection, retention time.Duration) error {
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: 1}},
		Options: options.Index().SetName("time_ttl").SetExpireAfterSeconds(int32(retention.Seconds())),
	})
	return err
}

func (h *MongoSink) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *MongoSink) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	add := func(a slog.Attr) bool {
		if a.Key == "request_id" {
			doc.RequestID = a.Value.String()
		} else {
			doc.Attrs[a.Key] = attrValue(a.Value)
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	select {
	case h.state.queue <- doc:
	default:
	}
	return nil
}

// attrValue keeps scalars typed and stringifies the rest; errors and groups
// have no useful BSON form.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString, slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool, slog.KindTime:
		return v.Any()
	case slog.KindDuration:
		return v.Duration().String()
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.String()
	}
}

func (h *MongoSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MongoSink{state: h.state, level: h.level, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

// WithGroup is flat: group names are not recorded.
func (h *MongoSink) WithGroup(string) slog.Handler { return h }

func (st *sinkState) drain() {
	defer st.wg.Done()
	ticker := time.NewTicker(sinkDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = st.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-st.queue:
			batch = append(batch, doc)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-st.done:
			for len(st.queue) > 0 {
				batch = append(batch, <-st.queue)
				if len(batch) >= sinkBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close flushes queued records and stops the writer. The collection's client
// is left connected. Safe to call more than once.
func (h *MongoSink) Close() {
	h.state.once.Do(func() { close(h.state.done) })
	h.state.wg.Wait()
}

// MultiHandler fans out to multiple slog.Handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}

// Tee makes h receive every record the process logger accepts.
func Tee(h slog.Handler) {
	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
}
