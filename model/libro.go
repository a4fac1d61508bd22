// model/libro.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EstadoRevision is the approval lifecycle shared by Libro and Sugerencia.
// The persisted values are part of the wire contract.
type EstadoRevision string

const (
	RevisionPendiente EstadoRevision = "pendiente"
	RevisionAprobada  EstadoRevision = "aprobada"
	RevisionRechazada EstadoRevision = "rechazada"
)

// Terminal reports whether no further transition is defined from s.
func (s EstadoRevision) Terminal() bool {
	return s == RevisionAprobada || s == RevisionRechazada
}

// Libro is the canonical book record. (titulo, autor, categoria) is
// unique among non-deleted books. Estrellas is always the mean star
// rating over the active comments, 0 when there are none.
type Libro struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Titulo         string               `bson:"titulo" json:"titulo"`
	Autor          string               `bson:"autor" json:"autor"`
	Categoria      string               `bson:"categoria" json:"categoria"`
	Anio           int                  `bson:"anio" json:"anio"`
	Issbn          string               `bson:"issbn,omitempty" json:"issbn,omitempty"`
	Sinopsis       string               `bson:"sinopsis,omitempty" json:"sinopsis,omitempty"`
	ImagenPortada  string               `bson:"imagen_portada,omitempty" json:"imagen_portada,omitempty"`
	RutaLibro      string               `bson:"ruta_libro,omitempty" json:"ruta_libro,omitempty"`
	EstadoLibro    bool                 `bson:"estado_libro" json:"estado_libro"`
	EstadoRevision EstadoRevision       `bson:"estado_revision" json:"estado_revision"`
	FechaLibro     time.Time            `bson:"fecha_libro" json:"fecha_libro"`
	Comentarios    []primitive.ObjectID `bson:"comentarios" json:"comentarios"`
	Estrellas      float64              `bson:"estrellas" json:"estrellas"`
	IDPersona      primitive.ObjectID   `bson:"id_persona,omitempty" json:"id_persona,omitempty"`
}
