package personasvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/model"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	personarepo "github.com/Luis24M/biblioinfo-back/repository/persona"
	userrepo "github.com/Luis24M/biblioinfo-back/repository/user"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

type mockPersonas struct {
	createFn              func(ctx context.Context, p *model.Persona) error
	byIDFn                func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error)
	byUserOrCodigoFn      func(ctx context.Context, userID primitive.ObjectID, codigo string) (*model.Persona, error)
	updateFn              func(ctx context.Context, id primitive.ObjectID, upd personarepo.Update) (*model.Persona, error)
	addLibroGuardadoFn    func(ctx context.Context, personaID, libroID primitive.ObjectID) error
	removeLibroGuardadoFn func(ctx context.Context, personaID, libroID primitive.ObjectID) error
}

var _ personarepo.Repo = (*mockPersonas)(nil)

func (m *mockPersonas) Create(ctx context.Context, p *model.Persona) error {
	if m.createFn == nil {
		p.ID = primitive.NewObjectID()
		return nil
	}
	return m.createFn(ctx, p)
}

func (m *mockPersonas) ByID(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockPersonas) ByUser(ctx context.Context, userID primitive.ObjectID) (*model.Persona, error) {
	return nil, nil
}

func (m *mockPersonas) ByUserOrCodigo(ctx context.Context, userID primitive.ObjectID, codigo string) (*model.Persona, error) {
	if m.byUserOrCodigoFn == nil {
		return nil, nil
	}
	return m.byUserOrCodigoFn(ctx, userID, codigo)
}

func (m *mockPersonas) List(ctx context.Context) ([]model.Persona, error) { return nil, nil }

func (m *mockPersonas) Update(ctx context.Context, id primitive.ObjectID, upd personarepo.Update) (*model.Persona, error) {
	if m.updateFn == nil {
		return nil, nil
	}
	return m.updateFn(ctx, id, upd)
}

func (m *mockPersonas) AddLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error {
	if m.addLibroGuardadoFn == nil {
		return nil
	}
	return m.addLibroGuardadoFn(ctx, personaID, libroID)
}

func (m *mockPersonas) RemoveLibroGuardado(ctx context.Context, personaID, libroID primitive.ObjectID) error {
	if m.removeLibroGuardadoFn == nil {
		return nil
	}
	return m.removeLibroGuardadoFn(ctx, personaID, libroID)
}

func (m *mockPersonas) IncLibrosSugeridos(ctx context.Context, id primitive.ObjectID, delta int) error {
	return nil
}

func (m *mockPersonas) EnsureIndexes(ctx context.Context) error { return nil }

type mockUsers struct {
	createFn          func(ctx context.Context, u *model.User) error
	byUsuarioFn       func(ctx context.Context, usuario string) (*model.User, error)
	byIDFn            func(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	updateRolEstadoFn func(ctx context.Context, id primitive.ObjectID, rol *model.Rol, estado *bool) error
}

var _ userrepo.Repo = (*mockUsers)(nil)

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = primitive.NewObjectID()
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockUsers) ByUsuario(ctx context.Context, usuario string) (*model.User, error) {
	if m.byUsuarioFn == nil {
		return nil, nil
	}
	return m.byUsuarioFn(ctx, usuario)
}

func (m *mockUsers) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

func (m *mockUsers) UpdateRolEstado(ctx context.Context, id primitive.ObjectID, rol *model.Rol, estado *bool) error {
	if m.updateRolEstadoFn == nil {
		return nil
	}
	return m.updateRolEstadoFn(ctx, id, rol, estado)
}

func (m *mockUsers) EnsureIndexes(ctx context.Context) error { return nil }

type mockLibros struct {
	librorepo.Repo

	byIDFn func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error)
}

func (m *mockLibros) ByID(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}

// --- tests ---

func TestCreate_LazyUser(t *testing.T) {
	ctx := context.Background()

	var createdUser *model.User
	um := &mockUsers{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = primitive.NewObjectID()
			createdUser = u
			return nil
		},
	}
	svc := New(&mockPersonas{}, um, &mockLibros{}, 4)

	cu, err := svc.Create(ctx, CreateReq{
		CodigoEstudiante: "20201234",
		Nombres:          "Ana",
		Apellidos:        "Quispe",
		Correo:           "ana@uni.edu",
		Carrera:          "Sistemas",
	})
	require.NoError(t, err)
	require.NotNil(t, createdUser)
	require.Equal(t, "20201234", createdUser.Usuario)
	require.Equal(t, model.RolEstudiante, createdUser.Rol)
	require.Equal(t, model.RolEstudiante, cu.Rol)
	require.Equal(t, model.BiografiaDefault, cu.Biografia)
	require.True(t, cu.Estado)
}

func TestCreate_ExistingUserReused(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()

	um := &mockUsers{
		byUsuarioFn: func(ctx context.Context, usuario string) (*model.User, error) {
			return &model.User{ID: userID, Usuario: usuario, Rol: model.RolAdministrador, Estado: true}, nil
		},
		createFn: func(ctx context.Context, u *model.User) error {
			t.Fatal("no second user may be created")
			return nil
		},
	}
	svc := New(&mockPersonas{}, um, &mockLibros{}, 4)

	cu, err := svc.Create(ctx, CreateReq{
		CodigoEstudiante: "20201234",
		Nombres:          "Ana", Apellidos: "Quispe",
		Correo: "ana@uni.edu", Carrera: "Sistemas",
	})
	require.NoError(t, err)
	require.Equal(t, userID, cu.IDUser)
	require.Equal(t, model.RolAdministrador, cu.Rol)
}

func TestCreate_DuplicatePersona(t *testing.T) {
	ctx := context.Background()
	pm := &mockPersonas{
		byUserOrCodigoFn: func(ctx context.Context, userID primitive.ObjectID, codigo string) (*model.Persona, error) {
			return &model.Persona{ID: primitive.NewObjectID(), CodigoEstudiante: codigo}, nil
		},
	}
	svc := New(pm, &mockUsers{}, &mockLibros{}, 4)

	_, err := svc.Create(ctx, CreateReq{
		CodigoEstudiante: "20201234",
		Nombres:          "Ana", Apellidos: "Quispe",
		Correo: "ana@uni.edu", Carrera: "Sistemas",
	})
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdate_RolPropagatesToUser(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()

	var gotRol *model.Rol
	pm := &mockPersonas{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
			return &model.Persona{ID: id, IDUser: userID, Estado: true}, nil
		},
		updateFn: func(ctx context.Context, id primitive.ObjectID, upd personarepo.Update) (*model.Persona, error) {
			return &model.Persona{ID: id, IDUser: userID, Estado: true}, nil
		},
	}
	um := &mockUsers{
		updateRolEstadoFn: func(ctx context.Context, id primitive.ObjectID, rol *model.Rol, estado *bool) error {
			require.Equal(t, userID, id)
			gotRol = rol
			return nil
		},
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
			return &model.User{ID: id, Rol: model.RolAdministrador, Estado: true}, nil
		},
	}
	svc := New(pm, um, &mockLibros{}, 4)

	rol := "administrador"
	cu, err := svc.Update(ctx, primitive.NewObjectID(), UpdateReq{Rol: &rol})
	require.NoError(t, err)
	require.NotNil(t, gotRol)
	require.Equal(t, model.RolAdministrador, *gotRol)
	require.Equal(t, model.RolAdministrador, cu.Rol)
}

func TestSaveLibro_DuplicateConflict(t *testing.T) {
	ctx := context.Background()
	pm := &mockPersonas{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
			return &model.Persona{ID: id, Estado: true}, nil
		},
		addLibroGuardadoFn: func(ctx context.Context, personaID, libroID primitive.ObjectID) error {
			return apperr.New(apperr.Conflict, "libro already saved")
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return &model.Libro{ID: id, EstadoLibro: true}, nil
		},
	}
	svc := New(pm, &mockUsers{}, lm, 4)

	_, err := svc.SaveLibro(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestSaveLibro_InactiveLibro(t *testing.T) {
	ctx := context.Background()
	pm := &mockPersonas{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
			return &model.Persona{ID: id, Estado: true}, nil
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			return &model.Libro{ID: id, EstadoLibro: false}, nil
		},
	}
	svc := New(pm, &mockUsers{}, lm, 4)

	_, err := svc.SaveLibro(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestRemoveLibroGuardado_AbsentConflict(t *testing.T) {
	ctx := context.Background()
	pm := &mockPersonas{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
			return &model.Persona{ID: id, Estado: true}, nil
		},
		removeLibroGuardadoFn: func(ctx context.Context, personaID, libroID primitive.ObjectID) error {
			return apperr.New(apperr.Conflict, "libro not in saved list")
		},
	}
	svc := New(pm, &mockUsers{}, &mockLibros{}, 4)

	_, err := svc.RemoveLibroGuardado(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestLibrosGuardados_HidesUnapproved(t *testing.T) {
	ctx := context.Background()
	visible := primitive.NewObjectID()
	pendiente := primitive.NewObjectID()
	borrado := primitive.NewObjectID()

	pm := &mockPersonas{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Persona, error) {
			return &model.Persona{
				ID: id, Estado: true,
				LibrosGuardados: []primitive.ObjectID{visible, pendiente, borrado},
			}, nil
		},
	}
	lm := &mockLibros{
		byIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Libro, error) {
			switch id {
			case visible:
				return &model.Libro{ID: id, EstadoLibro: true, EstadoRevision: model.RevisionAprobada}, nil
			case pendiente:
				return &model.Libro{ID: id, EstadoLibro: true, EstadoRevision: model.RevisionPendiente}, nil
			default:
				return &model.Libro{ID: id, EstadoLibro: false, EstadoRevision: model.RevisionAprobada}, nil
			}
		},
	}
	svc := New(pm, &mockUsers{}, lm, 4)

	out, err := svc.LibrosGuardados(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, visible, out[0].ID)
}

func TestDeactivate_PersonaMissing(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockPersonas{}, &mockUsers{}, &mockLibros{}, 4)

	err := svc.Deactivate(ctx, primitive.NewObjectID())
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
