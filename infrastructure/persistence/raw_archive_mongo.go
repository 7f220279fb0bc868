package persistence

import (
	"context"
	"fmt"
	"time"

	"post-radar/domain/model"
	"post-radar/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects to the MongoDB instance that archives raw provider
// payloads.
func NewMongoDb(host, port, user, password string) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s", host, port)
	if user != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s", user, password, host, port)
	}
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(5 * time.Second)
	return mongo.Connect(opts)
}

// RawArchive stores verbatim provider payloads in MongoDB for display and
// replay. The archive is a display cache only; it never feeds filtering or
// dedup decisions. All operations are nil-safe no-ops when Mongo is absent.
type RawArchive struct {
	client *mongo.Client
	dbName string
}

func NewRawArchive(client *mongo.Client, dbName string) *RawArchive {
	if dbName == "" {
		dbName = "post_radar"
	}
	return &RawArchive{client: client, dbName: dbName}
}

func (a *RawArchive) ArchiveRaw(ctx context.Context, posts []model.Post) error {
	if a == nil || a.client == nil {
		return nil
	}
	coll := a.client.Database(a.dbName).Collection("raw_posts")
	for i := range posts {
		p := &posts[i]
		if len(p.RawJSON) == 0 {
			continue
		}
		var payload bson.D
		if err := bson.UnmarshalExtJSON(p.RawJSON, true, &payload); err != nil {
			// Keep unparseable payloads as opaque strings rather than drop them.
			payload = bson.D{{Key: "raw", Value: string(p.RawJSON)}}
		}
		docID := fmt.Sprintf("%d:%s", p.TrackedAccountID, p.ID)
		filter := bson.D{{Key: "_id", Value: docID}}
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "member_id", Value: p.MemberID},
			{Key: "tracked_account_id", Value: p.TrackedAccountID},
			{Key: "post_id", Value: p.ID},
			{Key: "fetched_at", Value: p.FetchedAt},
			{Key: "payload", Value: payload},
		}}}
		if _, err := coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
			logger.GetLogger().WithField("post_id", p.ID).WithField("error", err).Warn("raw archive upsert failed")
			return err
		}
	}
	return nil
}
