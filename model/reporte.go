// model/reporte.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reporte flags a comment, or one reply inside it, as abusive.
// (id_comentario, id_respuesta, id_persona) is unique: one report per
// reporter per target.
type Reporte struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IDComentario primitive.ObjectID `bson:"id_comentario" json:"id_comentario"`
	// IDRespuesta is set only when the target is a reply inside the comment.
	IDRespuesta   *primitive.ObjectID `bson:"id_respuesta,omitempty" json:"id_respuesta,omitempty"`
	IDPersona     primitive.ObjectID  `bson:"id_persona" json:"id_persona"`
	MotivoReporte string              `bson:"motivo_reporte" json:"motivo_reporte"`
	FechaReporte  time.Time           `bson:"fecha_reporte" json:"fecha_reporte"`
	EstadoReporte bool                `bson:"estado_reporte" json:"estado_reporte"`
}
