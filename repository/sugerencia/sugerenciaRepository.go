package sugerenciarepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Luis24M/biblioinfo-back/model"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
	"github.com/Luis24M/biblioinfo-back/util/database"
)

const collection = "sugerencias"

type Repo interface {
	Insert(ctx context.Context, s *model.Sugerencia) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Sugerencia, error)
	// List returns every suggestion, optionally narrowed by review
	// state. Moderators need history, so there is no active filter.
	List(ctx context.Context, revision *model.EstadoRevision) ([]model.Sugerencia, error)
	SetEstadoRevision(ctx context.Context, id primitive.ObjectID, estado model.EstadoRevision) error
	SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, s *model.Sugerencia) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "sugerencia already exists for that libro and persona", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.Sugerencia, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	s := &model.Sugerencia{}
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *repo) List(ctx context.Context, revision *model.EstadoRevision) ([]model.Sugerencia, error) {
	filter := bson.M{}
	if revision != nil {
		filter["estado_revision"] = *revision
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "fecha_sugerencia", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []model.Sugerencia
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) SetEstadoRevision(ctx context.Context, id primitive.ObjectID, estado model.EstadoRevision) error {
	return r.set(ctx, id, bson.M{"estado_revision": estado})
}

func (r *repo) SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error {
	return r.set(ctx, id, bson.M{"estado_sugerencia": estado})
}

func (r *repo) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "sugerencia not found")
	}
	return nil
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id_libro", Value: 1}, {Key: "id_persona", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_libro_persona"),
	})
	return err
}
