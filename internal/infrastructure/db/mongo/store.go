package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/project-registry/internal/core/ports"
)

const (
	collectionIdentities = "identities"
	collectionProjects   = "projects"
	collectionCounters   = "counters"
)

// Store is the Mongo implementation of ports.Store. Identities and projects
// use integer ids drawn from the counters collection.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	// sess is set on stores handed to WithTx callbacks.
	sess mongo.Session
}

var _ ports.Store = (*Store)(nil)

func New(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{client: client, db: db, transactions: transactions}
}

func (s *Store) Identities() ports.IdentityRepository {
	return &IdentityRepository{store: s, col: s.db.Collection(collectionIdentities)}
}

func (s *Store) Projects() ports.ProjectRepository {
	return &ProjectRepository{store: s, col: s.db.Collection(collectionProjects)}
}

// WithTx runs fn inside a session transaction when transactions are enabled.
// On a standalone server fn runs directly against the database; every
// mutation in this package is a single-document write, so uniqueness and
// not-found checks still hold.
func (s *Store) WithTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if !s.transactions || s.sess != nil {
		return fn(s)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(_ mongo.SessionContext) (any, error) {
		scoped := *s
		scoped.sess = sess
		return nil, fn(&scoped)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique username index and the project owner index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.db.Collection(collectionIdentities).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	if err != nil {
		return fmt.Errorf("create identities index: %w", err)
	}

	_, err = s.db.Collection(collectionProjects).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create projects index: %w", err)
	}
	return nil
}

// opContext binds ctx to the active session, if any, and applies the default
// per-operation timeout.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.sess != nil {
		ctx = mongo.NewSessionContext(ctx, s.sess)
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

// nextID atomically increments and returns the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(collectionCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}
