package personarepo

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

const collection = "personas"

// Update carries the optional profile fields of a partial update.
type Update struct {
	Nombres   *string
	Apellidos *string
	Correo    *string
	Carrera   *string
	Biografia *string
	Estado    *bool
}

type Repo interface {
	Create(ctx context.Context, p *model.Persona) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Persona, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) (*model.Persona, error)
	ByUserOrCodigo(ctx context.Context, userID primitive.ObjectID, codigo string) (*model.Persona, error)
	List(ctx context.Context) ([]model.Persona, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Persona, error)
	AddLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error
	RemoveLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error
	IncLibrosSugeridos(ctx context.Context, id primitive.ObjectID, delta int) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, p *model.Persona) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.LibrosGuardados == nil {
		p.LibrosGuardados = []primitive.ObjectID{}
	}
	if _, err := coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "persona already exists for that user or codigo", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *repo) ByUser(ctx context.Context, userID primitive.ObjectID) (*model.Persona, error) {
	return r.findOne(ctx, bson.M{"id_user": userID})
}

func (r *repo) ByUserOrCodigo(ctx context.Context, userID primitive.ObjectID, codigo string) (*model.Persona, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"id_user": userID},
		bson.M{"codigoEstudiante": codigo},
	}})
}

func (r *repo) findOne(ctx context.Context, filter bson.M) (*model.Persona, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	p := &model.Persona{}
	if err := coll.FindOne(ctx, filter).Decode(p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *repo) List(ctx context.Context) ([]model.Persona, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []model.Persona
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Persona, error) {
	set := bson.M{}
	if upd.Nombres != nil {
		set["nombres"] = *upd.Nombres
	}
	if upd.Apellidos != nil {
		set["apellidos"] = *upd.Apellidos
	}
	if upd.Correo != nil {
		set["correo"] = *upd.Correo
	}
	if upd.Carrera != nil {
		set["carrera"] = *upd.Carrera
	}
	if upd.Biografia != nil {
		set["biografia"] = *upd.Biografia
	}
	if upd.Estado != nil {
		set["estado"] = *upd.Estado
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}
	after := options.After
	p := &model.Persona{}
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after)).Decode(p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "persona not found")
		}
		return nil, err
	}
	return p, nil
}

// AddLibroGuardado pushes the book into the saved set. The filter
// excludes documents that already contain it, so a duplicate add is a
// Conflict even under concurrent requests.
func (r *repo) AddLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": personaID, "librosGuardados": bson.M{"$ne": libroID}},
		bson.M{"$push": bson.M{"librosGuardados": libroID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.Conflict, "libro already saved")
	}
	return nil
}

func (r *repo) RemoveLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": personaID, "librosGuardados": libroID},
		bson.M{"$pull": bson.M{"librosGuardados": libroID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.Conflict, "libro is not in the saved list")
	}
	return nil
}

func (r *repo) IncLibrosSugeridos(ctx context.Context, id primitive.ObjectID, delta int) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"librosSugeridos": delta}})
	return err
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "codigoEstudiante", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_codigoEstudiante"),
		},
		{
			Keys:    bson.D{{Key: "id_user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id_user"),
		},
	})
	return err
}
