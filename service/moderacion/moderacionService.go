// Package moderacionsvc drives the book-proposal workflow and abuse
// reporting, including the shared pendiente→aprobada|rechazada state
// machine on Sugerencia and its proposed Libro.
package moderacionsvc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	comentariorepo "github.com/Luis24M/biblioinfo-back/repository/comentario"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	personarepo "github.com/Luis24M/biblioinfo-back/repository/persona"
	reporterepo "github.com/Luis24M/biblioinfo-back/repository/reporte"
	sugerenciarepo "github.com/Luis24M/biblioinfo-back/repository/sugerencia"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

// ProposeReq carries the fields of a proposed book.
type ProposeReq struct {
	Titulo            string `json:"titulo" validate:"required"`
	Autor             string `json:"autor" validate:"required"`
	Categoria         string `json:"categoria" validate:"required"`
	Anio              int    `json:"anio" validate:"required"`
	Issbn             string `json:"issbn"`
	Sinopsis          string `json:"sinopsis"`
	ImagenPortada     string `json:"imagen_portada"`
	ComentarioInicial string `json:"comentario_inicial"`
}

// Proposal pairs the suggestion with its pending book.
type Proposal struct {
	Sugerencia model.Sugerencia `json:"sugerencia"`
	Libro      model.Libro      `json:"libro"`
}

// Completa is a suggestion joined with its book, proposer and active
// discussion comments.
type Completa struct {
	Sugerencia  model.Sugerencia   `json:"sugerencia"`
	Libro       *model.Libro       `json:"libro"`
	Persona     *model.Persona     `json:"persona"`
	Comentarios []model.Comentario `json:"comentarios"`
}

// ReporteReq identifies a comment, or one reply inside it, to flag.
type ReporteReq struct {
	ComentarioID primitive.ObjectID
	RespuestaID  *primitive.ObjectID
	PersonaID    primitive.ObjectID
	Motivo       string
}

type Service interface {
	Propose(ctx context.Context, personaID primitive.ObjectID, req ProposeReq) (*Proposal, error)
	ListSugerencias(ctx context.Context, revision *model.EstadoRevision) ([]model.Sugerencia, error)
	SugerenciaCompleta(ctx context.Context, id primitive.ObjectID) (*Completa, error)
	Decide(ctx context.Context, id primitive.ObjectID, decision model.EstadoRevision) (*model.Sugerencia, error)
	RemoveSugerencia(ctx context.Context, id primitive.ObjectID) error
	FileReporte(ctx context.Context, req ReporteReq) (*model.Reporte, error)
	ListReportes(ctx context.Context, activeOnly bool) ([]model.Reporte, error)
	ResolveReporte(ctx context.Context, id primitive.ObjectID) error
}

type service struct {
	sr  sugerenciarepo.Repo
	lr  librorepo.Repo
	rr  reporterepo.Repo
	cr  comentariorepo.Repo
	pr  personarepo.Repo
	log *slog.Logger
}

func New(sr sugerenciarepo.Repo, lr librorepo.Repo, rr reporterepo.Repo, cr comentariorepo.Repo, pr personarepo.Repo, log *slog.Logger) Service {
	return &service{sr: sr, lr: lr, rr: rr, cr: cr, pr: pr, log: log}
}

// Propose creates the pending book and its suggestion as one logical
// unit: if the suggestion insert fails the book is rolled back so no
// orphan pending book survives.
func (s *service) Propose(ctx context.Context, personaID primitive.ObjectID, req ProposeReq) (*Proposal, error) {
	if personaID.IsZero() {
		return nil, apperr.New(apperr.Validation, "id_persona is required")
	}
	if strings.TrimSpace(req.Titulo) == "" || strings.TrimSpace(req.Autor) == "" ||
		strings.TrimSpace(req.Categoria) == "" || req.Anio == 0 {
		return nil, apperr.New(apperr.Validation, "titulo, autor, categoria and anio are required")
	}

	p, err := s.pr.ByID(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, "persona not found")
	}

	now := time.Now().UTC()
	libro := &model.Libro{
		Titulo:         req.Titulo,
		Autor:          req.Autor,
		Categoria:      req.Categoria,
		Anio:           req.Anio,
		Issbn:          req.Issbn,
		Sinopsis:       req.Sinopsis,
		ImagenPortada:  req.ImagenPortada,
		EstadoLibro:    true,
		EstadoRevision: model.RevisionPendiente,
		FechaLibro:     now,
		IDPersona:      personaID,
	}
	if err := s.lr.Create(ctx, libro); err != nil {
		return nil, err
	}

	sug := &model.Sugerencia{
		IDLibro:           libro.ID,
		IDPersona:         personaID,
		ComentarioInicial: req.ComentarioInicial,
		EstadoRevision:    model.RevisionPendiente,
		EstadoSugerencia:  true,
		FechaSugerencia:   now,
	}
	if err := s.sr.Insert(ctx, sug); err != nil {
		if derr := s.lr.Delete(ctx, libro.ID); derr != nil {
			s.log.Error("rollback of proposed libro failed, orphan pending libro",
				"id_libro", libro.ID.Hex(), "err", derr)
		}
		return nil, err
	}

	// Counter bump is best-effort; the proposal itself already stands.
	if err := s.pr.IncLibrosSugeridos(ctx, personaID, 1); err != nil {
		s.log.Warn("librosSugeridos increment failed", "id_persona", personaID.Hex(), "err", err)
	}

	return &Proposal{Sugerencia: *sug, Libro: *libro}, nil
}

func (s *service) ListSugerencias(ctx context.Context, revision *model.EstadoRevision) ([]model.Sugerencia, error) {
	return s.sr.List(ctx, revision)
}

func (s *service) SugerenciaCompleta(ctx context.Context, id primitive.ObjectID) (*Completa, error) {
	sug, err := s.sr.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sug == nil || !sug.EstadoSugerencia {
		return nil, apperr.New(apperr.NotFound, "sugerencia not found or inactive")
	}

	out := &Completa{Sugerencia: *sug}
	if out.Libro, err = s.lr.ByID(ctx, sug.IDLibro); err != nil {
		return nil, err
	}
	if out.Persona, err = s.pr.ByID(ctx, sug.IDPersona); err != nil {
		return nil, err
	}
	out.Comentarios = make([]model.Comentario, 0, len(sug.IDComentario))
	for _, cid := range sug.IDComentario {
		c, err := s.cr.ByID(ctx, cid)
		if err != nil {
			return nil, err
		}
		if c == nil || !c.Estado {
			continue
		}
		c.Respuestas = c.ActiveRespuestas()
		out.Comentarios = append(out.Comentarios, *c)
	}
	return out, nil
}

// Decide moves a pending suggestion to aprobada or rechazada, carrying
// the linked book along. The book is written first and the suggestion
// marked terminal last: if the second write fails the suggestion stays
// pendiente and the whole decision can simply be retried, the book
// write then being a no-op re-set of the same value.
func (s *service) Decide(ctx context.Context, id primitive.ObjectID, decision model.EstadoRevision) (*model.Sugerencia, error) {
	if !decision.Terminal() {
		return nil, apperr.New(apperr.Validation, "decision must be aprobada or rechazada")
	}

	sug, err := s.sr.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sug == nil {
		return nil, apperr.New(apperr.NotFound, "sugerencia not found")
	}
	if sug.EstadoRevision.Terminal() {
		// Closed suggestions are not re-litigated: repeating a decision
		// is a no-op answering with the recorded state.
		return sug, nil
	}

	if err := s.lr.SetEstadoRevision(ctx, sug.IDLibro, decision); err != nil {
		return nil, err
	}
	if err := s.sr.SetEstadoRevision(ctx, id, decision); err != nil {
		s.log.Error("decision applied to libro but not sugerencia, retry required",
			"id_sugerencia", id.Hex(), "id_libro", sug.IDLibro.Hex(), "decision", decision, "err", err)
		return nil, apperr.Wrap(apperr.Internal, "decision partially applied, retry", err)
	}

	sug.EstadoRevision = decision
	return sug, nil
}

// RemoveSugerencia soft-deletes a suggestion from the listing.
func (s *service) RemoveSugerencia(ctx context.Context, id primitive.ObjectID) error {
	sug, err := s.sr.ByID(ctx, id)
	if err != nil {
		return err
	}
	if sug == nil || !sug.EstadoSugerencia {
		return apperr.New(apperr.NotFound, "sugerencia not found")
	}
	return s.sr.SetEstado(ctx, id, false)
}

// FileReporte flags a comment or one reply inside it. The unique
// (target, reporter) index keeps a reporter to one active report per
// target.
func (s *service) FileReporte(ctx context.Context, req ReporteReq) (*model.Reporte, error) {
	if strings.TrimSpace(req.Motivo) == "" {
		return nil, apperr.New(apperr.Validation, "motivo_reporte is required")
	}

	c, err := s.cr.ByID(ctx, req.ComentarioID)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Estado {
		return nil, apperr.New(apperr.NotFound, "comentario not found")
	}
	if req.RespuestaID != nil {
		found := false
		for _, r := range c.Respuestas {
			if r.ID == *req.RespuestaID && r.Estado {
				found = true
				break
			}
		}
		if !found {
			return nil, apperr.New(apperr.NotFound, "respuesta not found")
		}
	}

	rep := &model.Reporte{
		IDComentario:  req.ComentarioID,
		IDRespuesta:   req.RespuestaID,
		IDPersona:     req.PersonaID,
		MotivoReporte: req.Motivo,
		FechaReporte:  time.Now().UTC(),
		EstadoReporte: true,
	}
	if err := s.rr.Insert(ctx, rep); err != nil {
		return nil, err
	}

	// Back-link on the target is best-effort; the report row is the
	// source of truth.
	if req.RespuestaID != nil {
		err = s.cr.PushReporteRespuesta(ctx, req.ComentarioID, *req.RespuestaID, rep.ID)
	} else {
		err = s.cr.PushReporte(ctx, req.ComentarioID, rep.ID)
	}
	if err != nil {
		s.log.Warn("report back-link failed", "id_reporte", rep.ID.Hex(), "err", err)
	}
	return rep, nil
}

func (s *service) ListReportes(ctx context.Context, activeOnly bool) ([]model.Reporte, error) {
	return s.rr.List(ctx, activeOnly)
}

func (s *service) ResolveReporte(ctx context.Context, id primitive.ObjectID) error {
	rep, err := s.rr.ByID(ctx, id)
	if err != nil {
		return err
	}
	if rep == nil || !rep.EstadoReporte {
		return apperr.New(apperr.NotFound, "reporte not found")
	}
	return s.rr.SetEstado(ctx, id, false)
}
