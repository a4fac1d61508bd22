// model/persona.go
package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Persona is the public profile, 1:1 with a User.
type Persona struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	IDUser           primitive.ObjectID   `bson:"id_user" json:"id_user"`
	CodigoEstudiante string               `bson:"codigoEstudiante" json:"codigoEstudiante"`
	Nombres          string               `bson:"nombres" json:"nombres"`
	Apellidos        string               `bson:"apellidos" json:"apellidos"`
	Correo           string               `bson:"correo" json:"correo"`
	Carrera          string               `bson:"carrera" json:"carrera"`
	Biografia        string               `bson:"biografia" json:"biografia"`
	LibrosGuardados  []primitive.ObjectID `bson:"librosGuardados" json:"librosGuardados"`
	LibrosSugeridos  int                  `bson:"librosSugeridos" json:"librosSugeridos"`
	ResenasUtiles    int                  `bson:"resenasUtiles" json:"resenasUtiles"`
	Estado           bool                 `bson:"estado" json:"estado"`
}

const BiografiaDefault = "Estoy en biblioinfo"
