package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/darasa/core"
)

// collections
const (
	usersCollection       = "users"
	classroomsCollection  = "classrooms"
	assignmentsCollection = "assignments"
	submissionsCollection = "submissions"
)

// maxResults caps every multi-document query.
const maxResults = 100

const opTimeout = 5 * time.Second

// Open connects to the configured MongoDB deployment and pings it.
func Open(conf *core.Config) (*mongo.Database, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, errors.Wrap(err, "pinging mongo")
	}

	closeFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return client.Database(conf.Database.Name), closeFunc, nil
}

func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}
