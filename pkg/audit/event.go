package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	LoginSucceeded EventType = "login_succeeded"
	LoginFailed    EventType = "login_failed"
	LoginThrottled EventType = "login_throttled"
	Logout         EventType = "logout"
)

type Event struct {
	MongoID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID         string             `bson:"-" json:"id"`
	Type       EventType          `bson:"type" json:"type"`
	Username   string             `bson:"username" json:"username"`
	AccountID  string             `bson:"account_id,omitempty" json:"accountId,omitempty"`
	RemoteAddr string             `bson:"remote_addr,omitempty" json:"remoteAddr,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"requestId,omitempty"`
	Created    time.Time          `bson:"created" json:"created"`
}

// Recorder stores authentication events. Recording is best effort: callers
// log a failure and carry on.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
	Recent(ctx context.Context, limit int64) ([]*Event, error)
}

// NopRecorder is used when no audit database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *Event) error { return nil }

func (NopRecorder) Recent(context.Context, int64) ([]*Event, error) { return []*Event{}, nil }
