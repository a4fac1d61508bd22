package librosvc

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	comentariorepo "github.com/Luis24M/biblioinfo-back/repository/comentario"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

// CreateReq is the direct (admin) book-creation payload. Books added
// this way skip moderation and land approved.
type CreateReq struct {
	Titulo        string `json:"titulo" validate:"required"`
	Autor         string `json:"autor" validate:"required"`
	Categoria     string `json:"categoria" validate:"required"`
	Anio          int    `json:"anio" validate:"required"`
	Issbn         string `json:"issbn"`
	Sinopsis      string `json:"sinopsis"`
	ImagenPortada string `json:"imagen_portada"`
	RutaLibro     string `json:"ruta_libro"`
}

// Ranking names one of the public orderings.
type Ranking string

const (
	MasRecientes   Ranking = "recientes"
	MasComentados  Ranking = "comentados"
	MejorValorados Ranking = "valorados"
)

type Service interface {
	Create(ctx context.Context, ownerPersonaID primitive.ObjectID, req CreateReq) (*model.Libro, error)
	ListPublic(ctx context.Context) ([]model.Libro, error)
	ListAll(ctx context.Context) ([]model.Libro, error)
	ByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Libro, error)
	Detail(ctx context.Context, id primitive.ObjectID) (*model.Libro, error)
	Update(ctx context.Context, id primitive.ObjectID, upd librorepo.Update) (*model.Libro, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Rank(ctx context.Context, ranking Ranking, limit int) ([]model.Libro, error)
}

type service struct {
	lr librorepo.Repo
	cr comentariorepo.Repo
}

func New(lr librorepo.Repo, cr comentariorepo.Repo) Service {
	return &service{lr: lr, cr: cr}
}

func (s *service) Create(ctx context.Context, ownerPersonaID primitive.ObjectID, req CreateReq) (*model.Libro, error) {
	if strings.TrimSpace(req.Titulo) == "" || strings.TrimSpace(req.Autor) == "" ||
		strings.TrimSpace(req.Categoria) == "" || req.Anio == 0 {
		return nil, apperr.New(apperr.Validation, "titulo, autor, categoria and anio are required")
	}
	l := &model.Libro{
		Titulo:         req.Titulo,
		Autor:          req.Autor,
		Categoria:      req.Categoria,
		Anio:           req.Anio,
		Issbn:          req.Issbn,
		Sinopsis:       req.Sinopsis,
		ImagenPortada:  req.ImagenPortada,
		RutaLibro:      req.RutaLibro,
		EstadoLibro:    true,
		EstadoRevision: model.RevisionAprobada,
		FechaLibro:     time.Now().UTC(),
		IDPersona:      ownerPersonaID,
	}
	if err := s.lr.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListPublic is the only state combination ordinary readers see.
func (s *service) ListPublic(ctx context.Context) ([]model.Libro, error) {
	aprobada := model.RevisionAprobada
	return s.lr.List(ctx, librorepo.Filter{SoloActivos: true, Revision: &aprobada})
}

func (s *service) ListAll(ctx context.Context) ([]model.Libro, error) {
	return s.lr.List(ctx, librorepo.Filter{})
}

func (s *service) ByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Libro, error) {
	return s.lr.List(ctx, librorepo.Filter{SoloActivos: true, Persona: &personaID})
}

func (s *service) Detail(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
	l, err := s.lr.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil || !l.EstadoLibro {
		return nil, apperr.New(apperr.NotFound, "libro not found")
	}
	return l, nil
}

func (s *service) Update(ctx context.Context, id primitive.ObjectID, upd librorepo.Update) (*model.Libro, error) {
	return s.lr.Update(ctx, id, upd)
}

func (s *service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.lr.SetEstadoLibro(ctx, id, false)
}

// Rank filters to approved+active first, sorts, then bounds the
// length. The order matters: an unapproved book must never leak into a
// public ranking however highly it is rated.
func (s *service) Rank(ctx context.Context, ranking Ranking, limit int) ([]model.Libro, error) {
	if limit <= 0 {
		limit = 10
	}
	libros, err := s.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	switch ranking {
	case MasRecientes:
		sort.SliceStable(libros, func(i, j int) bool {
			return libros[i].FechaLibro.After(libros[j].FechaLibro)
		})
	case MejorValorados:
		sort.SliceStable(libros, func(i, j int) bool {
			return libros[i].Estrellas > libros[j].Estrellas
		})
	case MasComentados:
		// Ranked by how many active comments each book has, not by the
		// raw comment-id array (retracted reviews keep their linkage).
		counts := make(map[primitive.ObjectID]int64, len(libros))
		for _, l := range libros {
			n, err := s.cr.CountActiveByLibro(ctx, l.ID)
			if err != nil {
				return nil, err
			}
			counts[l.ID] = n
		}
		sort.SliceStable(libros, func(i, j int) bool {
			return counts[libros[i].ID] > counts[libros[j].ID]
		})
	default:
		return nil, apperr.New(apperr.Validation, "unknown ranking")
	}

	if len(libros) > limit {
		libros = libros[:limit]
	}
	return libros, nil
}
