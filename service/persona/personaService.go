package personasvc

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	personarepo "github.com/Luis24M/biblioinfo-back/repository/persona"
	userrepo "github.com/Luis24M/biblioinfo-back/repository/user"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
	"github.com/Luis24M/biblioinfo-back/util/hash"
)

// CreateReq is the profile-creation payload.
type CreateReq struct {
	CodigoEstudiante string `json:"codigoEstudiante" validate:"required"`
	Nombres          string `json:"nombres" validate:"required"`
	Apellidos        string `json:"apellidos" validate:"required"`
	Correo           string `json:"correo" validate:"required,email"`
	Carrera          string `json:"carrera" validate:"required"`
}

// UpdateReq is the partial-update payload. Rol and Estado changes
// propagate to the backing user record.
type UpdateReq struct {
	Nombres   *string `json:"nombres"`
	Apellidos *string `json:"apellidos"`
	Correo    *string `json:"correo" validate:"omitempty,email"`
	Carrera   *string `json:"carrera"`
	Biografia *string `json:"biografia"`
	Rol       *string `json:"rol" validate:"omitempty,oneof=administrador estudiante"`
	Estado    *bool   `json:"estado"`
}

// ConUsuario is a profile joined with its user's rol.
type ConUsuario struct {
	model.Persona
	Rol model.Rol `json:"rol"`
}

type Service interface {
	Create(ctx context.Context, req CreateReq) (*ConUsuario, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) (*ConUsuario, error)
	List(ctx context.Context) ([]ConUsuario, error)
	Update(ctx context.Context, personaID primitive.ObjectID, req UpdateReq) (*ConUsuario, error)
	Deactivate(ctx context.Context, personaID primitive.ObjectID) error
	SaveLibro(ctx context.Context, personaID, libroID primitive.ObjectID) (*model.Persona, error)
	RemoveLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) (*model.Persona, error)
	LibrosGuardados(ctx context.Context, personaID primitive.ObjectID) ([]model.Libro, error)
}

type service struct {
	pr         personarepo.Repo
	ur         userrepo.Repo
	lr         librorepo.Repo
	bcryptCost int
}

func New(pr personarepo.Repo, ur userrepo.Repo, lr librorepo.Repo, bcryptCost int) Service {
	return &service{pr: pr, ur: ur, lr: lr, bcryptCost: bcryptCost}
}

// Create registers a profile. When no user exists for the codigo, one
// is created lazily with the codigo as both handle and initial
// password, rol estudiante.
func (s *service) Create(ctx context.Context, req CreateReq) (*ConUsuario, error) {
	codigo := strings.TrimSpace(req.CodigoEstudiante)
	if codigo == "" {
		return nil, apperr.New(apperr.Validation, "codigoEstudiante is required")
	}

	u, err := s.ur.ByUsuario(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if u == nil {
		hashed, err := hash.HashPassword(codigo, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		u = &model.User{
			Usuario:      codigo,
			PasswordHash: hashed,
			Rol:          model.RolEstudiante,
			Estado:       true,
		}
		if err := s.ur.Create(ctx, u); err != nil {
			return nil, err
		}
	}

	existing, err := s.pr.ByUserOrCodigo(ctx, u.ID, codigo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "persona already exists for that user or codigo")
	}

	p := &model.Persona{
		IDUser:           u.ID,
		CodigoEstudiante: codigo,
		Nombres:          req.Nombres,
		Apellidos:        req.Apellidos,
		Correo:           req.Correo,
		Carrera:          req.Carrera,
		Biografia:        model.BiografiaDefault,
		LibrosGuardados:  []primitive.ObjectID{},
		Estado:           true,
	}
	if err := s.pr.Create(ctx, p); err != nil {
		return nil, err
	}
	return &ConUsuario{Persona: *p, Rol: u.Rol}, nil
}

func (s *service) ByUser(ctx context.Context, userID primitive.ObjectID) (*ConUsuario, error) {
	p, err := s.pr.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ConUsuario{Persona: *p}
	if u != nil {
		out.Rol = u.Rol
	}
	return out, nil
}

func (s *service) List(ctx context.Context) ([]ConUsuario, error) {
	personas, err := s.pr.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ConUsuario, 0, len(personas))
	for _, p := range personas {
		row := ConUsuario{Persona: p}
		u, err := s.ur.ByID(ctx, p.IDUser)
		if err != nil {
			return nil, err
		}
		if u != nil {
			row.Rol = u.Rol
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, personaID primitive.ObjectID, req UpdateReq) (*ConUsuario, error) {
	p, err := s.pr.ByID(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}

	// Role and enabled flag live on the user record.
	if req.Rol != nil || req.Estado != nil {
		var rol *model.Rol
		if req.Rol != nil {
			r := model.Rol(*req.Rol)
			rol = &r
		}
		if err := s.ur.UpdateRolEstado(ctx, p.IDUser, rol, req.Estado); err != nil {
			return nil, err
		}
	}

	updated, err := s.pr.Update(ctx, personaID, personarepo.Update{
		Nombres:   req.Nombres,
		Apellidos: req.Apellidos,
		Correo:    req.Correo,
		Carrera:   req.Carrera,
		Biografia: req.Biografia,
		Estado:    req.Estado,
	})
	if err != nil {
		return nil, err
	}

	u, err := s.ur.ByID(ctx, p.IDUser)
	if err != nil {
		return nil, err
	}
	out := &ConUsuario{Persona: *updated}
	if u != nil {
		out.Rol = u.Rol
	}
	return out, nil
}

func (s *service) Deactivate(ctx context.Context, personaID primitive.ObjectID) error {
	estado := false
	_, err := s.Update(ctx, personaID, UpdateReq{Estado: &estado})
	return err
}

func (s *service) SaveLibro(ctx context.Context, personaID, libroID primitive.ObjectID) (*model.Persona, error) {
	p, err := s.pr.ByID(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}
	l, err := s.lr.ByID(ctx, libroID)
	if err != nil {
		return nil, err
	}
	if l == nil || !l.EstadoLibro {
		return nil, apperr.New(apperr.NotFound, "libro not found")
	}
	if err := s.pr.AddLibroGuardado(ctx, personaID, libroID); err != nil {
		return nil, err
	}
	return s.pr.ByID(ctx, personaID)
}

func (s *service) RemoveLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) (*model.Persona, error) {
	p, err := s.pr.ByID(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}
	if err := s.pr.RemoveLibroGuardado(ctx, personaID, libroID); err != nil {
		return nil, err
	}
	return s.pr.ByID(ctx, personaID)
}

// LibrosGuardados resolves the saved ids, keeping only books an
// ordinary reader may see: active and approved.
func (s *service) LibrosGuardados(ctx context.Context, personaID primitive.ObjectID) ([]model.Libro, error) {
	p, err := s.pr.ByID(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}
	out := make([]model.Libro, 0, len(p.LibrosGuardados))
	for _, id := range p.LibrosGuardados {
		l, err := s.lr.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if l == nil || !l.EstadoLibro || l.EstadoRevision != model.RevisionAprobada {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}
