package persona

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	personasvc "github.com/Luis24M/biblioinfo-back/service/persona"
	"github.com/Luis24M/biblioinfo-back/util/respond"
)

type Controller struct {
	Svc personasvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "administrador"
}

func oid(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

// POST /v1/personas/register
func (h *Controller) Create(c echo.Context) error {
	var req personasvc.CreateReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	p, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		h.Log.Error("persona create error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "persona creada exitosamente", p)
}

// GET /v1/personas/user/:userId
func (h *Controller) ByUser(c echo.Context) error {
	userID, ok := oid(c.Param("userId"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.Svc.ByUser(c.Request().Context(), userID)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "persona encontrada", p)
}

// GET /v1/personas/allpersonas  (admin)
func (h *Controller) List(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("persona list error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "personas encontradas", rows)
}

// PUT /v1/personas/update/:personaId
func (h *Controller) Update(c echo.Context) error {
	id, ok := oid(c.Param("personaId"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req personasvc.UpdateReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	// Only moderators may change roles or flip accounts.
	if (req.Rol != nil || req.Estado != nil) && !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	p, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		h.Log.Error("persona update error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "persona actualizada exitosamente", p)
}

// PUT /v1/personas/:id/desactivar  (admin)
func (h *Controller) Deactivate(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.Deactivate(c.Request().Context(), id); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "persona desactivada", nil)
}

type savedBookReq struct {
	IDPersona string `json:"id_persona" validate:"required"`
	IDLibro   string `json:"id_libro" validate:"required"`
}

// POST /v1/personas/guardar-libro
func (h *Controller) SaveLibro(c echo.Context) error {
	var req savedBookReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	personaID, ok1 := oid(req.IDPersona)
	libroID, ok2 := oid(req.IDLibro)
	if !ok1 || !ok2 {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.Svc.SaveLibro(c.Request().Context(), personaID, libroID)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libro guardado correctamente", p)
}

// POST /v1/personas/eliminar-libro-guardado
func (h *Controller) RemoveSavedLibro(c echo.Context) error {
	var req savedBookReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	personaID, ok1 := oid(req.IDPersona)
	libroID, ok2 := oid(req.IDLibro)
	if !ok1 || !ok2 {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.Svc.RemoveLibroGuardado(c.Request().Context(), personaID, libroID)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libro eliminado de la lista de guardados", p)
}

// GET /v1/personas/:id_persona/libros-guardados
func (h *Controller) SavedLibros(c echo.Context) error {
	id, ok := oid(c.Param("id_persona"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	libros, err := h.Svc.LibrosGuardados(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libros guardados obtenidos correctamente", libros)
}
