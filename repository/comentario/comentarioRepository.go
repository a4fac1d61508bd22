package comentariorepo

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

const collection = "comentarios"

// Update carries the editable fields of a review.
type Update struct {
	Contenido *string
	Estrellas *int
}

type Repo interface {
	Insert(ctx context.Context, c *model.Comentario) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error)
	ActiveByLibro(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error)
	CountActiveByLibro(ctx context.Context, libroID primitive.ObjectID) (int64, error)
	ActiveByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Comentario, error)
	SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushRespuesta(ctx context.Context, comentarioID primitive.ObjectID, r model.Respuesta) error
	SetRespuestaEstado(ctx context.Context, comentarioID, respuestaID primitive.ObjectID, estado bool) error
	PushReporte(ctx context.Context, comentarioID, reporteID primitive.ObjectID) error
	PushReporteRespuesta(ctx context.Context, comentarioID, respuestaID, reporteID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, c *model.Comentario) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "persona already reviewed this libro", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	c := &model.Comentario{}
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *repo) ActiveByLibro(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error) {
	return r.findActive(ctx, bson.M{"id_libro": libroID, "estado_comentario": true})
}

func (r *repo) CountActiveByLibro(ctx context.Context, libroID primitive.ObjectID) (int64, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{"id_libro": libroID, "estado_comentario": true})
}

func (r *repo) ActiveByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error) {
	return r.findActive(ctx, bson.M{"id_persona": personaID, "estado_comentario": true})
}

func (r *repo) findActive(ctx context.Context, filter bson.M) ([]model.Comentario, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "fecha_comentario", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []model.Comentario
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Comentario, error) {
	set := bson.M{}
	if upd.Contenido != nil {
		set["contenido_comentario"] = *upd.Contenido
	}
	if upd.Estrellas != nil {
		set["cantidad_estrellas_comentario"] = *upd.Estrellas
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}
	c := &model.Comentario{}
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "estado_comentario": true}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "comentario not found or inactive")
		}
		return nil, err
	}
	return c, nil
}

func (r *repo) SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"estado_comentario": estado}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "comentario not found")
	}
	return nil
}

// Delete removes the row physically. Only used to compensate when the
// libro write fails after the comment insert.
func (r *repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// PushRespuesta appends onto an active comment only.
func (r *repo) PushRespuesta(ctx context.Context, comentarioID primitive.ObjectID, resp model.Respuesta) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": comentarioID, "estado_comentario": true},
		bson.M{"$push": bson.M{"respuestas": resp}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "comentario not found or inactive")
	}
	return nil
}

func (r *repo) SetRespuestaEstado(ctx context.Context, comentarioID, respuestaID primitive.ObjectID, estado bool) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": comentarioID, "respuestas.id": respuestaID},
		bson.M{"$set": bson.M{"respuestas.$.estado": estado}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "respuesta not found")
	}
	return nil
}

func (r *repo) PushReporte(ctx context.Context, comentarioID, reporteID primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": comentarioID},
		bson.M{"$push": bson.M{"reportado": reporteID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "comentario not found")
	}
	return nil
}

func (r *repo) PushReporteRespuesta(ctx context.Context, comentarioID, respuestaID, reporteID primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": comentarioID, "respuestas.id": respuestaID},
		bson.M{"$push": bson.M{"respuestas.$.reportado": reporteID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "respuesta not found")
	}
	return nil
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id_libro", Value: 1}, {Key: "id_persona", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("unique_libro_persona").
			SetPartialFilterExpression(bson.M{"estado_comentario": true}),
	})
	return err
}
