package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/mindcraft/pkg/cache"
	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
)

const mongoCollection = "maps"

// mongoMap is the stored shape: the document fields next to its name.
type mongoMap struct {
	Name        string               `bson:"_id"`
	Nodes       []mapfile.NodeRecord `bson:"nodes"`
	Connections []mapfile.Connection `bson:"connections"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// MongoStore keeps each map as one document in the "maps" collection,
// keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB deployment at uri. The database is
// taken from the URI path and defaults to "mindcraft".
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	db, err := mongoDatabase(uri)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "configure mongodb client")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, readpref.Primary()))
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "connect to mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(mongoCollection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, doc *mapfile.Document) error {
	if err := errors.ValidateMapName(name); err != nil {
		return err
	}
	rec := mongoMap{
		Name:        name,
		Nodes:       doc.Nodes,
		Connections: doc.Connections,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "save map %q", name)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (*mapfile.Document, error) {
	var rec mongoMap
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "load map %q", name)
	}
	doc := mapfile.Document{Nodes: rec.Nodes, Connections: rec.Connections}
	if doc.Nodes == nil {
		doc.Nodes = []mapfile.NodeRecord{}
	}
	if doc.Connections == nil {
		doc.Connections = []mapfile.Connection{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "list maps")
	}
	var recs []struct {
		Name string `bson:"_id"`
	}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "list maps")
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "delete map %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
