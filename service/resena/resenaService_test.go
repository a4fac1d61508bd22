package resenasvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	comentariorepo "github.com/Luis24M/biblioinfo-back/repository/comentario"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

type mockComentarios struct {
	insertFn             func(ctx context.Context, c *model.Comentario) error
	byIDFn               func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error)
	activeByLibroFn      func(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error)
	countActiveByLibroFn func(ctx context.Context, libroID primitive.ObjectID) (int64, error)
	activeByPersonaFn    func(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error)
	updateFn             func(ctx context.Context, id primitive.ObjectID, upd comentariorepo.Update) (*model.Comentario, error)
	setEstadoFn          func(ctx context.Context, id primitive.ObjectID, estado bool) error
	deleteFn             func(ctx context.Context, id primitive.ObjectID) error
	pushRespuestaFn      func(ctx context.Context, comentarioID primitive.ObjectID, r model.Respuesta) error
	setRespuestaEstadoFn func(ctx context.Context, comentarioID, respuestaID primitive.ObjectID, estado bool) error
}

var _ comentariorepo.Repo = (*mockComentarios)(nil)

func (m *mockComentarios) Insert(ctx context.Context, c *model.Comentario) error {
	if m.insertFn == nil {
		c.ID = primitive.NewObjectID()
		return nil
	}
	return m.insertFn(ctx, c)
}

func (m *mockComentarios) ByID(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockComentarios) ActiveByLibro(ctx context.Context, libroID primitive.ObjectID) ([]model.Comentario, error) {
	if m.activeByLibroFn == nil {
		return nil, nil
	}
	return m.activeByLibroFn(ctx, libroID)
}

func (m *mockComentarios) CountActiveByLibro(ctx context.Context, libroID primitive.ObjectID) (int64, error) {
	if m.countActiveByLibroFn == nil {
		return 0, nil
	}
	return m.countActiveByLibroFn(ctx, libroID)
}

func (m *mockComentarios) ActiveByPersona(ctx context.Context, personaID primitive.ObjectID) ([]model.Comentario, error) {
	if m.activeByPersonaFn == nil {
		return nil, nil
	}
	return m.activeByPersonaFn(ctx, personaID)
}

func (m *mockComentarios) Update(ctx context.Context, id primitive.ObjectID, upd comentariorepo.Update) (*model.Comentario, error) {
	if m.updateFn == nil {
		return nil, nil
	}
	return m.updateFn(ctx, id, upd)
}

func (m *mockComentarios) SetEstado(ctx context.Context, id primitive.ObjectID, estado bool) error {
	if m.setEstadoFn == nil {
		return nil
	}
	return m.setEstadoFn(ctx, id, estado)
}

func (m *mockComentarios) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *mockComentarios) PushRespuesta(ctx context.Context, comentarioID primitive.ObjectID, r model.Respuesta) error {
	if m.pushRespuestaFn == nil {
		return nil
	}
	return m.pushRespuestaFn(ctx, comentarioID, r)
}

func (m *mockComentarios) SetRespuestaEstado(ctx context.Context, comentarioID, respuestaID primitive.ObjectID, estado bool) error {
	if m.setRespuestaEstadoFn == nil {
		return nil
	}
	return m.setRespuestaEstadoFn(ctx, comentarioID, respuestaID, estado)
}

func (m *mockComentarios) PushReporte(ctx context.Context, comentarioID, reporteID primitive.ObjectID) error {
	return nil
}

func (m *mockComentarios) PushReporteRespuesta(ctx context.Context, comentarioID, respuestaID, reporteID primitive.ObjectID) error {
	return nil
}

func (m *mockComentarios) EnsureIndexes(ctx context.Context) error { return nil }

type mockLibros struct {
	byIDFn             func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error)
	attachComentarioFn func(ctx context.Context, libroID, comentarioID primitive.ObjectID, estrellas float64) error
	setEstrellasFn     func(ctx context.Context, id primitive.ObjectID, estrellas float64) error
	deleteFn           func(ctx context.Context, id primitive.ObjectID) error
}

var _ librorepo.Repo = (*mockLibros)(nil)

func (m *mockLibros) Create(ctx context.Context, l *model.Libro) error { return nil }

func (m *mockLibros) ByID(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockLibros) List(ctx context.Context, f librorepo.Filter) ([]model.Libro, error) {
	return nil, nil
}

func (m *mockLibros) Update(ctx context.Context, id primitive.ObjectID, upd librorepo.Update) (*model.Libro, error) {
	return nil, nil
}

func (m *mockLibros) SetEstadoLibro(ctx context.Context, id primitive.ObjectID, estado bool) error {
	return nil
}

func (m *mockLibros) SetEstadoRevision(ctx context.Context, id primitive.ObjectID, estado model.EstadoRevision) error {
	return nil
}

func (m *mockLibros) AttachComentario(ctx context.Context, libroID, comentarioID primitive.ObjectID, estrellas float64) error {
	if m.attachComentarioFn == nil {
		return nil
	}
	return m.attachComentarioFn(ctx, libroID, comentarioID, estrellas)
}

func (m *mockLibros) SetEstrellas(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
	if m.setEstrellasFn == nil {
		return nil
	}
	return m.setEstrellasFn(ctx, id, estrellas)
}

func (m *mockLibros) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *mockLibros) EnsureIndexes(ctx context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeLibro(id primitive.ObjectID) *model.Libro {
	return &model.Libro{ID: id, Titulo: "Rayuela", EstadoLibro: true, EstadoRevision: model.RevisionAprobada}
}

// --- tests ---

func TestSubmit_RecomputesAggregate(t *testing.T) {
	ctx := context.Background()
	libroID := primitive.NewObjectID()

	var attached float64
	cm := &mockComentarios{
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			return []model.Comentario{
				{Estrellas: 4, Estado: true},
				{Estrellas: 2, Estado: true},
			}, nil
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return activeLibro(id), nil
		},
		attachComentarioFn: func(ctx context.Context, _, _ primitive.ObjectID, estrellas float64) error {
			attached = estrellas
			return nil
		},
	}
	svc := New(cm, lm, testLogger())

	c, err := svc.Submit(ctx, libroID, primitive.NewObjectID(), "muy bueno", 4)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.False(t, c.ID.IsZero())
	require.True(t, c.Estado)
	require.Equal(t, 3.0, attached)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockComentarios{}, &mockLibros{}, testLogger())

	_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "ok", 0)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "ok", 6)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "   ", 3)
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestSubmit_LibroInactive(t *testing.T) {
	ctx := context.Background()
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return &model.Libro{ID: id, EstadoLibro: false}, nil
		},
	}
	svc := New(&mockComentarios{}, lm, testLogger())

	_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "x", 3)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSubmit_DuplicateConflict(t *testing.T) {
	ctx := context.Background()
	cm := &mockComentarios{
		insertFn: func(ctx context.Context, c *model.Comentario) error {
			return apperr.New(apperr.Conflict, "persona already reviewed this libro")
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return activeLibro(id), nil
		},
	}
	svc := New(cm, lm, testLogger())

	_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "otra vez", 5)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestSubmit_CompensatesWhenAttachFails(t *testing.T) {
	ctx := context.Background()

	var deleted primitive.ObjectID
	cm := &mockComentarios{
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			return []model.Comentario{{Estrellas: 5, Estado: true}}, nil
		},
		deleteFn: func(ctx context.Context, id primitive.ObjectID) error {
			deleted = id
			return nil
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return activeLibro(id), nil
		},
		attachComentarioFn: func(ctx context.Context, _, _ primitive.ObjectID, _ float64) error {
			return apperr.New(apperr.NotFound, "libro not found")
		},
	}
	svc := New(cm, lm, testLogger())

	_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "x", 5)
	require.Error(t, err)
	require.False(t, deleted.IsZero())
}

func TestRetract_RefreshesAggregate(t *testing.T) {
	ctx := context.Background()
	libroID := primitive.NewObjectID()
	comentarioID := primitive.NewObjectID()

	var set float64 = -1
	cm := &mockComentarios{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
			return &model.Comentario{ID: id, IDLibro: libroID, Estrellas: 4, Estado: true}, nil
		},
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			// what remains after the retraction
			return []model.Comentario{{Estrellas: 2, Estado: true}}, nil
		},
	}
	lm := &mockLibros{
		setEstrellasFn: func(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
			set = estrellas
			return nil
		},
	}
	svc := New(cm, lm, testLogger())

	require.NoError(t, svc.Retract(ctx, comentarioID))
	require.Equal(t, 2.0, set)
}

func TestRetract_LastCommentZeroesAggregate(t *testing.T) {
	ctx := context.Background()

	var set float64 = -1
	cm := &mockComentarios{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
			return &model.Comentario{ID: id, IDLibro: primitive.NewObjectID(), Estrellas: 5, Estado: true}, nil
		},
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			return nil, nil
		},
	}
	lm := &mockLibros{
		setEstrellasFn: func(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
			set = estrellas
			return nil
		},
	}
	svc := New(cm, lm, testLogger())

	require.NoError(t, svc.Retract(ctx, primitive.NewObjectID()))
	require.Equal(t, 0.0, set)
}

func TestRetract_AlreadyInactive(t *testing.T) {
	ctx := context.Background()
	cm := &mockComentarios{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
			return &model.Comentario{ID: id, Estado: false}, nil
		},
	}
	svc := New(cm, &mockLibros{}, testLogger())

	err := svc.Retract(ctx, primitive.NewObjectID())
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestEdit_StarsChangeRecomputes(t *testing.T) {
	ctx := context.Background()
	libroID := primitive.NewObjectID()
	stars := 5

	recomputed := false
	cm := &mockComentarios{
		updateFn: func(ctx context.Context, id primitive.ObjectID, upd comentariorepo.Update) (*model.Comentario, error) {
			require.NotNil(t, upd.Estrellas)
			return &model.Comentario{ID: id, IDLibro: libroID, Estrellas: *upd.Estrellas, Estado: true}, nil
		},
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			return []model.Comentario{{Estrellas: 5, Estado: true}}, nil
		},
	}
	lm := &mockLibros{
		setEstrellasFn: func(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
			recomputed = true
			return nil
		},
	}
	svc := New(cm, lm, testLogger())

	c, err := svc.Edit(ctx, primitive.NewObjectID(), EditReq{Estrellas: &stars})
	require.NoError(t, err)
	require.Equal(t, 5, c.Estrellas)
	require.True(t, recomputed)
}

func TestEdit_ContentOnlySkipsRecompute(t *testing.T) {
	ctx := context.Background()
	contenido := "corregido"

	cm := &mockComentarios{
		updateFn: func(ctx context.Context, id primitive.ObjectID, upd comentariorepo.Update) (*model.Comentario, error) {
			return &model.Comentario{ID: id, Contenido: *upd.Contenido, Estado: true}, nil
		},
	}
	lm := &mockLibros{
		setEstrellasFn: func(ctx context.Context, id primitive.ObjectID, estrellas float64) error {
			t.Fatal("aggregate must not be touched on a content-only edit")
			return nil
		},
	}
	svc := New(cm, lm, testLogger())

	c, err := svc.Edit(ctx, primitive.NewObjectID(), EditReq{Contenido: &contenido})
	require.NoError(t, err)
	require.Equal(t, "corregido", c.Contenido)
}

func TestEdit_BadStars(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockComentarios{}, &mockLibros{}, testLogger())

	bad := 9
	_, err := svc.Edit(ctx, primitive.NewObjectID(), EditReq{Estrellas: &bad})
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestByLibro_StripsInactiveReplies(t *testing.T) {
	ctx := context.Background()
	cm := &mockComentarios{
		activeByLibroFn: func(ctx context.Context, id primitive.ObjectID) ([]model.Comentario, error) {
			return []model.Comentario{{
				Estado: true,
				Respuestas: []model.Respuesta{
					{Contenido: "visible", Estado: true},
					{Contenido: "borrada", Estado: false},
				},
			}}, nil
		},
	}
	svc := New(cm, &mockLibros{}, testLogger())

	out, err := svc.ByLibro(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Respuestas, 1)
	require.Equal(t, "visible", out[0].Respuestas[0].Contenido)
}

func TestAddRespuesta_Success(t *testing.T) {
	ctx := context.Background()

	var pushed model.Respuesta
	cm := &mockComentarios{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
			return &model.Comentario{ID: id, Estado: true}, nil
		},
		pushRespuestaFn: func(ctx context.Context, comentarioID primitive.ObjectID, r model.Respuesta) error {
			pushed = r
			return nil
		},
	}
	svc := New(cm, &mockLibros{}, testLogger())

	r, err := svc.AddRespuesta(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "de acuerdo")
	require.NoError(t, err)
	require.False(t, r.ID.IsZero())
	require.True(t, r.Estado)
	require.Equal(t, pushed.ID, r.ID)
}

func TestAddRespuesta_TooLong(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockComentarios{}, &mockLibros{}, testLogger())

	long := make([]byte, model.MaxRespuestaLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.AddRespuesta(ctx, primitive.NewObjectID(), primitive.NewObjectID(), string(long))
	require.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestAddRespuesta_CommentGone(t *testing.T) {
	ctx := context.Background()
	cm := &mockComentarios{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Comentario, error) {
			return nil, nil
		},
	}
	svc := New(cm, &mockLibros{}, testLogger())

	_, err := svc.AddRespuesta(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "hola")
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSubmit_RepoErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("mongo down")
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return nil, boom
		},
	}
	svc := New(&mockComentarios{}, lm, testLogger())

	_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "x", 3)
	require.ErrorIs(t, err, boom)
}
