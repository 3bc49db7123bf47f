package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"hospitaladmin/pkg/audit"
)

func TestRecordRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := audit.NewMongoRepo(mt.DB)

		event := &audit.Event{Type: audit.LoginSucceeded, Username: "hr", AccountID: "2"}
		err := repo.Record(context.Background(), event)

		require.NoError(t, err)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Created.IsZero())
	})

	mt.Run("insert error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := audit.NewMongoRepo(mt.DB)

		err := repo.Record(context.Background(), &audit.Event{Type: audit.LoginFailed, Username: "ghost"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insert audit event")
	})
}

func TestRecentRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success with non valid document", func(mt *mtest.T) {
		now := time.Now().UTC()
		docs := []bson.D{
			{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "type", Value: "logout"}, {Key: "username", Value: "hr"}, {Key: "created", Value: now}},
			{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "type", Value: "login_failed"}, {Key: "username", Value: "ghost"}, {Key: "created", Value: now.Add(-time.Minute)}},
			{{Key: "_id", Value: "oops"}, {Key: "type", Value: "logout"}},
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, "audit.auth_events", mtest.FirstBatch, docs...),
			mtest.CreateCursorResponse(0, "audit.auth_events", mtest.NextBatch),
		)
		repo := audit.NewMongoRepo(mt.DB)

		events, err := repo.Recent(context.Background(), 10)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, audit.Logout, events[0].Type)
		assert.Equal(t, "ghost", events[1].Username)
		assert.NotEmpty(t, events[0].ID)
	})

	mt.Run("find error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "some error",
		}))
		repo := audit.NewMongoRepo(mt.DB)

		events, err := repo.Recent(context.Background(), 10)

		assert.Error(t, err)
		assert.Nil(t, events)
	})
}

func TestNopRecorder(t *testing.T) {
	var rec audit.Recorder = audit.NopRecorder{}

	assert.NoError(t, rec.Record(context.Background(), &audit.Event{}))
	events, err := rec.Recent(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, events)
}
