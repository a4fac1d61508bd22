package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type Rol string

const (
	RolAdministrador Rol = "administrador"
	RolEstudiante    Rol = "estudiante"
)

// User is the credential record. Never hard-deleted; disabling flips Estado.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Usuario      string             `bson:"usuario" json:"usuario"`
	PasswordHash string             `bson:"password" json:"-"`
	Rol          Rol                `bson:"rol" json:"rol"`
	Estado       bool               `bson:"estado" json:"estado"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Usuario  string `json:"usuario" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Rol      string `json:"rol" validate:"required,oneof=administrador estudiante"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Usuario  string `json:"usuario" validate:"required"`
	Password string `json:"password" validate:"required"`
}
