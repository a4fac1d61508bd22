package librorepo

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

const collection = "libros"

// Filter narrows a catalog listing. The zero value lists everything;
// callers compose the active/approved predicate explicitly.
type Filter struct {
	SoloActivos bool
	Revision    *model.EstadoRevision
	Persona     *primitive.ObjectID
}

// Update carries the optional fields of a partial book update.
type Update struct {
	Titulo        *string
	Autor         *string
	Categoria     *string
	Anio          *int
	Issbn         *string
	Sinopsis      *string
	ImagenPortada *string
	RutaLibro     *string
}

type Repo interface {
	Create(ctx context.Context, l *model.Libro) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Libro, error)
	List(ctx context.Context, f Filter) ([]model.Libro, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Libro, error)
	SetEstadoLibro(ctx context.Context, id primitive.ObjectID, estado bool) error
	SetEstadoRevision(ctx context.Context, id primitive.ObjectID, estado model.EstadoRevision) error
	AttachComentario(ctx context.Context, libroID, comentarioID primitive.ObjectID, estrellas float64) error
	SetEstrellas(ctx context.Context, id primitive.ObjectID, estrellas float64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, l *model.Libro) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.Comentarios == nil {
		l.Comentarios = []primitive.ObjectID{}
	}
	if _, err := coll.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Wrap(apperr.Conflict, "libro with same titulo/autor/categoria already exists", err)
		}
		return err
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	l := &model.Libro{}
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Libro, error) {
	filter := bson.M{}
	if f.SoloActivos {
		filter["estado_libro"] = true
	}
	if f.Revision != nil {
		filter["estado_revision"] = *f.Revision
	}
	if f.Persona != nil {
		filter["id_persona"] = *f.Persona
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []model.Libro
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*model.Libro, error) {
	set := bson.M{}
	if upd.Titulo != nil {
		set["titulo"] = *upd.Titulo
	}
	if upd.Autor != nil {
		set["autor"] = *upd.Autor
	}
	if upd.Categoria != nil {
		set["categoria"] = *upd.Categoria
	}
	if upd.Anio != nil {
		set["anio"] = *upd.Anio
	}
	if upd.Issbn != nil {
		set["issbn"] = *upd.Issbn
	}
	if upd.Sinopsis != nil {
		set["sinopsis"] = *upd.Sinopsis
	}
	if upd.ImagenPortada != nil {
		set["imagen_portada"] = *upd.ImagenPortada
	}
	if upd.RutaLibro != nil {
		set["ruta_libro"] = *upd.RutaLibro
	}
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}
	l := &model.Libro{}
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.New(apperr.NotFound, "libro not found")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Wrap(apperr.Conflict, "libro with same titulo/autor/categoria already exists", err)
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) SetEstadoLibro(ctx context.Context, id primitive.ObjectID, estado bool) error {
	return r.setField(ctx, id, "estado_libro", estado)
}

func (r *repo) SetEstadoRevision(ctx context.Context, id primitive.ObjectID, estado model.EstadoRevision) error {
	return r.setField(ctx, id, "estado_revision", estado)
}

func (r *repo) SetEstrellas(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
	return r.setField(ctx, id, "estrellas", estrellas)
}

func (r *repo) setField(ctx context.Context, id primitive.ObjectID, field string, v any) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: v}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "libro not found")
	}
	return nil
}

// AttachComentario links a comment id onto an active book and writes
// the refreshed aggregate in the same document update. A soft-deleted
// book does not match, which is what lets submitReview detect a
// concurrent delete and compensate.
func (r *repo) AttachComentario(ctx context.Context, libroID, comentarioID primitive.ObjectID, estrellas float64) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": libroID, "estado_libro": true},
		bson.M{
			"$push": bson.M{"comentarios": comentarioID},
			"$set":  bson.M{"estrellas": estrellas},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "libro not found or inactive")
	}
	return nil
}

// Delete removes the row physically. Only used to compensate a failed
// multi-document create; ordinary deletion is SetEstadoLibro(false).
func (r *repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *repo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.db.Collection(ctx, collection)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "titulo", Value: 1}, {Key: "autor", Value: 1}, {Key: "categoria", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("unique_titulo_autor_categoria").
			SetPartialFilterExpression(bson.M{"estado_libro": true}),
	})
	return err
}
