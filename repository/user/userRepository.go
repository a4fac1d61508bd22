package userrepo

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

const collection = "users"

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByUsuario(ctx context.Context, usuario string) (*model.User, error)
	ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	UpdateRolEstado(ctx context.Context, id primitive.ObjectID, rol *model.Rol, estado *bool) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "usuario already exists", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByUsuario(ctx context.Context, usuario string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"usuario": usuario})
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *repo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	u := &model.User{}
	if err := coll.FindOne(ctx, filter).Decode(u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) UpdateRolEstado(ctx context.Context, id primitive.ObjectID, rol *model.Rol, estado *bool) error {
	set := bson.M{}
	if rol != nil {
		set["rol"] = *rol
	}
	if estado != nil {
		set["estado"] = *estado
	}
	if len(set) == 0 {
		return nil
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "usuario", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_usuario"),
	})
	return err
}
