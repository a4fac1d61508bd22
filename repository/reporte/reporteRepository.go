package reporterepo

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

const collection = "reportes"

type Repo interface {
	Insert(ctx context.Context, rep *model.Reporte) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Reporte, error)
	List(ctx context.Context, activeOnly bool) ([]model.Reporte, error)
	SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, rep *model.Reporte) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if rep.ID.IsZero() {
		rep.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, rep); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "persona already reported this target", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.Reporte, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	rep := &model.Reporte{}
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(rep); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return rep, nil
}

func (r *repo) List(ctx context.Context, activeOnly bool) ([]model.Reporte, error) {
	filter := bson.M{}
	if activeOnly {
		filter["estado_reporte"] = true
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "fecha_reporte", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []model.Reporte
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"estado_reporte": estado}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "reporte not found")
	}
	return nil
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "id_comentario", Value: 1},
			{Key: "id_respuesta", Value: 1},
			{Key: "id_persona", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("unique_comentario_respuesta_persona"),
	})
	return err
}
