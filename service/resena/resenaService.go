// Package resenasvc owns the Comentario/Respuesta lifecycle and keeps
// Libro.estrellas and Libro.comentarios consistent with the set of
// active comments.
package resenasvc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	comentariorepo "github.com/Luis24M/biblioinfo-back/repository/comentario"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

// EditReq is the partial update of a review.
type EditReq struct {
	Contenido *string `json:"contenido_comentario"`
	Estrellas *int    `json:"cantidad_estrellas_comentario" validate:"omitempty,min=1,max=5"`
}

type Service interface {
	Submit(ctx context.Context, libroID, personaID primitive.ObjectID, contenido string, estrellas int) (*model.Comentario, error)
	ByLibro(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error)
	ByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error)
	Edit(ctx context.Context, comentarioID primitive.ObjectID, req EditReq) (*model.Comentario, error)
	Retract(ctx context.Context, comentarioID primitive.ObjectID) error
	AddRespuesta(ctx context.Context, comentarioID, personaID primitive.ObjectID, contenido string) (*model.Respuesta, error)
	RetractRespuesta(ctx context.Context, comentarioID, respuestaID primitive.ObjectID) error
}

type service struct {
	cr  comentariorepo.Repo
	lr  librorepo.Repo
	log *slog.Logger
}

func New(cr comentariorepo.Repo, lr librorepo.Repo, log *slog.Logger) Service {
	return &service{cr: cr, lr: lr, log: log}
}

// Submit persists the review, links it onto the book and refreshes the
// aggregate in one book write. If that write fails (the book vanished
// between the lookup and the update) the comment is deleted again so
// no comment ever points at a book that does not list it.
func (s *service) Submit(ctx context.Context, libroID, personaID primitive.ObjectID, contenido string, estrellas int) (*model.Comentario, error) {
	if estrellas < 1 || estrellas > 5 {
		return nil, apperr.New(apperr.Validation, "estrellas must be between 1 and 5")
	}
	if strings.TrimSpace(contenido) == "" {
		return nil, apperr.New(apperr.Validation, "contenido is required")
	}

	libro, err := s.lr.ByID(ctx, libroID)
	if err != nil {
		return nil, err
	}
	if libro == nil || !libro.EstadoLibro {
		return nil, apperr.New(apperr.NotFound, "libro not found")
	}

	c := &model.Comentario{
		IDPersona: personaID,
		IDLibro:   libroID,
		Estrellas: estrellas,
		Contenido: contenido,
		Fecha:     time.Now().UTC(),
		Estado:    true,
	}
	// The unique (id_libro, id_persona) index decides races: of two
	// simultaneous submissions exactly one insert succeeds.
	if err := s.cr.Insert(ctx, c); err != nil {
		return nil, err
	}

	media, err := s.mediaActiva(ctx, libroID)
	if err != nil {
		s.compensate(ctx, c.ID)
		return nil, err
	}
	if err := s.lr.AttachComentario(ctx, libroID, c.ID, media); err != nil {
		s.compensate(ctx, c.ID)
		return nil, err
	}
	return c, nil
}

// compensate undoes a comment insert after the book write failed.
// Best-effort: on failure the dangling id is logged for the
// reconciliation sweep and the original error still wins.
func (s *service) compensate(ctx context.Context, comentarioID primitive.ObjectID) {
	if err := s.cr.Delete(ctx, comentarioID); err != nil {
		s.log.Error("compensating comment delete failed, dangling comentario",
			"id_comentario", comentarioID.Hex(), "err", err)
	}
}

// mediaActiva recomputes the mean over the active comments, reading
// the full set every time. No running sum: a crash between writers
// converges on the next recomputation instead of drifting.
func (s *service) mediaActiva(ctx context.Context, libroID primitive.ObjectID) (float64, error) {
	activos, err := s.cr.ActiveByLibro(ctx, libroID)
	if err != nil {
		return 0, err
	}
	if len(activos) == 0 {
		return 0, nil
	}
	var sum int
	for _, c := range activos {
		sum += c.Estrellas
	}
	return float64(sum) / float64(len(activos)), nil
}

func (s *service) recompute(ctx context.Context, libroID primitive.ObjectID) error {
	media, err := s.mediaActiva(ctx, libroID)
	if err != nil {
		return err
	}
	return s.lr.SetEstrellas(ctx, libroID, media)
}

// ByLibro returns the active comments, oldest first, each stripped to
// its active replies. Inactive replies stay in storage.
func (s *service) ByLibro(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error) {
	out, err := s.cr.ActiveByLibro(ctx, libroID)
	if err != nil {
		return nil, err
	}
	stripRespuestas(out)
	return out, nil
}

func (s *service) ByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error) {
	out, err := s.cr.ActiveByPersona(ctx, personaID)
	if err != nil {
		return nil, err
	}
	stripRespuestas(out)
	return out, nil
}

func stripRespuestas(cs []model.Comentario) {
	for i := range cs {
		cs[i].Respuestas = cs[i].ActiveRespuestas()
	}
}

func (s *service) Edit(ctx context.Context, comentarioID primitive.ObjectID, req EditReq) (*model.Comentario, error) {
	if req.Estrellas != nil && (*req.Estrellas < 1 || *req.Estrellas > 5) {
		return nil, apperr.New(apperr.Validation, "estrellas must be between 1 and 5")
	}
	if req.Contenido != nil && strings.TrimSpace(*req.Contenido) == "" {
		return nil, apperr.New(apperr.Validation, "contenido must not be empty")
	}

	c, err := s.cr.Update(ctx, comentarioID, comentariorepo.Update{
		Contenido: req.Contenido,
		Estrellas: req.Estrellas,
	})
	if err != nil {
		return nil, err
	}
	if req.Estrellas != nil {
		if err := s.recompute(ctx, c.IDLibro); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Retract soft-deletes: the row and its place in Libro.comentarios are
// kept, only the active flag flips, and the aggregate is refreshed
// without it.
func (s *service) Retract(ctx context.Context, comentarioID primitive.ObjectID) error {
	c, err := s.cr.ByID(ctx, comentarioID)
	if err != nil {
		return err
	}
	if c == nil || !c.Estado {
		return apperr.New(apperr.NotFound, "comentario not found")
	}
	if err := s.cr.SetEstado(ctx, comentarioID, false); err != nil {
		return err
	}
	return s.recompute(ctx, c.IDLibro)
}

func (s *service) AddRespuesta(ctx context.Context, comentarioID, personaID primitive.ObjectID, contenido string) (*model.Respuesta, error) {
	if strings.TrimSpace(contenido) == "" {
		return nil, apperr.New(apperr.Validation, "contenido is required")
	}
	if len(contenido) > model.MaxRespuestaLen {
		return nil, apperr.New(apperr.Validation, "contenido exceeds 500 characters")
	}

	c, err := s.cr.ByID(ctx, comentarioID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Estado {
		return nil, apperr.New(apperr.NotFound, "comentario not found")
	}

	resp := model.Respuesta{
		ID:        primitive.NewObjectID(),
		IDPersona: personaID,
		Contenido: contenido,
		Estado:    true,
		Fecha:     time.Now().UTC(),
	}
	if err := s.cr.PushRespuesta(ctx, comentarioID, resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetractRespuesta flips one reply's active flag. Replies carry no
// aggregate, so nothing cascades.
func (s *service) RetractRespuesta(ctx context.Context, comentarioID, respuestaID primitive.ObjectID) error {
	return s.cr.SetRespuestaEstado(ctx, comentarioID, respuestaID, false)
}
