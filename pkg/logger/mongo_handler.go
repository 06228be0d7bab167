package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueueSize = 4096
	sinkBatchSize = 50
	sinkFlushTick = 2 * time.Second
)

// Entry is the document stored per log record.
type Entry struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// inserter is the slice of *mongo.Collection the sink needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoSink is an slog.Handler that ships records to MongoDB in batches from
// a background goroutine. Handle never blocks: when the queue is full the
// record is dropped.
type MongoSink struct {
	core  *sinkCore
	attrs []slog.Attr
	group string
}

type sinkCore struct {
	col    inserter
	client *mongo.Client
	queue  chan Entry
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// NewMongoSink connects to uri and returns a sink writing into db.collection.
// Close must be called on shutdown to flush what is still queued.
func NewMongoSink(uri, db, collection string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}, {Key: "request_id", Value: 1}},
	})

	s := newSink(col)
	s.core.client = client
	return s, nil
}

func newSink(col inserter) *MongoSink {
	core := &sinkCore{
		col:    col,
		queue:  make(chan Entry, sinkQueueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go core.run()
	return &MongoSink{core: core}
}

func (s *MongoSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (s *MongoSink) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	put := func(a slog.Attr) {
		if a.Key == "request_id" {
			e.RequestID = a.Value.String()
			return
		}
		key := a.Key
		if s.group != "" {
			key = s.group + "." + key
		}
		e.Attrs[key] = a.Value.Resolve().Any()
	}
	for _, a := range s.attrs {
		put(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(a)
		return true
	})
	if len(e.Attrs) == 0 {
		e.Attrs = nil
	}

	select {
	case s.core.queue <- e:
	default:
	}
	return nil
}

func (s *MongoSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), s.attrs...), attrs...)
	return &MongoSink{core: s.core, attrs: merged, group: s.group}
}

func (s *MongoSink) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := strings.TrimPrefix(s.group+"."+name, ".")
	return &MongoSink{core: s.core, attrs: s.attrs, group: group}
}

// Close flushes queued entries and disconnects. Safe to call more than once.
func (s *MongoSink) Close() {
	s.core.once.Do(func() {
		close(s.core.done)
		<-s.core.exited
		if s.core.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.core.client.Disconnect(ctx)
		}
	})
}

func (c *sinkCore) run() {
	defer close(c.exited)

	ticker := time.NewTicker(sinkFlushTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = c.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-c.queue:
			batch = append(batch, e)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-c.done:
			for {
				select {
				case e := <-c.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
