// model/sugerencia.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sugerencia proposes a new Libro (created in pendiente state) for
// moderation. (id_libro, id_persona) is unique.
type Sugerencia struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	IDLibro           primitive.ObjectID   `bson:"id_libro" json:"id_libro"`
	IDPersona         primitive.ObjectID   `bson:"id_persona" json:"id_persona"`
	ComentarioInicial string               `bson:"comentario_inicial,omitempty" json:"comentario_inicial,omitempty"`
	EstadoRevision    EstadoRevision       `bson:"estado_revision" json:"estado_revision"`
	EstadoSugerencia  bool                 `bson:"estado_sugerencia" json:"estado_sugerencia"`
	IDComentario      []primitive.ObjectID `bson:"id_comentario,omitempty" json:"id_comentario,omitempty"`
	FechaSugerencia   time.Time            `bson:"fecha_sugerencia" json:"fecha_sugerencia"`
}
