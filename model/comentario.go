// model/comentario.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Respuesta is a reply embedded in its owning Comentario. Replies have
// no lifecycle outside the parent: the array is append-only and a
// "delete" only flips Estado.
type Respuesta struct {
	ID        primitive.ObjectID   `bson:"id" json:"id"`
	IDPersona primitive.ObjectID   `bson:"id_persona" json:"id_persona"`
	Contenido string               `bson:"contenido" json:"contenido"`
	Estado    bool                 `bson:"estado" json:"estado"`
	Fecha     time.Time            `bson:"fecha" json:"fecha"`
	Reportado []primitive.ObjectID `bson:"reportado,omitempty" json:"reportado,omitempty"`
}

// MaxRespuestaLen caps the reply body.
const MaxRespuestaLen = 500

// Comentario is a review on a book. (id_libro, id_persona) is unique
// among active comments: one live review per reviewer per book.
type Comentario struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	IDPersona  primitive.ObjectID   `bson:"id_persona" json:"id_persona"`
	IDLibro    primitive.ObjectID   `bson:"id_libro" json:"id_libro"`
	Estrellas  int                  `bson:"cantidad_estrellas_comentario" json:"cantidad_estrellas_comentario"`
	Contenido  string               `bson:"contenido_comentario" json:"contenido_comentario"`
	Fecha      time.Time            `bson:"fecha_comentario" json:"fecha_comentario"`
	Estado     bool                 `bson:"estado_comentario" json:"estado_comentario"`
	Reportado  []primitive.ObjectID `bson:"reportado,omitempty" json:"reportado,omitempty"`
	Respuestas []Respuesta          `bson:"respuestas,omitempty" json:"respuestas,omitempty"`
}

// ActiveRespuestas returns the replies still visible, in append order.
func (c *Comentario) ActiveRespuestas() []Respuesta {
	out := make([]Respuesta, 0, len(c.Respuestas))
	for _, r := range c.Respuestas {
		if r.Estado {
			out = append(out, r)
		}
	}
	return out
}
