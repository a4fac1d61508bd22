package libro

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/app/echoServer/jwtx"
	librorepo "github.com/Luis24M/biblioinfo-back/repository/libro"
	librosvc "github.com/Luis24M/biblioinfo-back/service/libro"
	personasvc "github.com/Luis24M/biblioinfo-back/service/persona"
	"github.com/Luis24M/biblioinfo-back/util/respond"
)

type Controller struct {
	Svc     librosvc.Service
	Persona personasvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "administrador"
}

func oid(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

// POST /v1/libros  (admin)
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	var req librosvc.CreateReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}

	owner := primitive.NilObjectID
	if userID, err := jwtx.UserIDFromContext(c); err == nil {
		if p, err := h.Persona.ByUser(c.Request().Context(), userID); err == nil {
			owner = p.ID
		}
	}

	l, err := h.Svc.Create(c.Request().Context(), owner, req)
	if err != nil {
		h.Log.Error("libro create error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "libro creado exitosamente", l)
}

// GET /v1/libros
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.ListPublic(c.Request().Context())
	if err != nil {
		h.Log.Error("libro list error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libros obtenidos", rows)
}

// GET /v1/libros/all  (admin: every review state)
func (h *Controller) ListAll(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libros obtenidos", rows)
}

// GET /v1/libros/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	l, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libro obtenido", l)
}

// GET /v1/libros/persona/:id_persona
func (h *Controller) ByPersona(c echo.Context) error {
	id, ok := oid(c.Param("id_persona"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	rows, err := h.Svc.ByPersona(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libros obtenidos para la persona", rows)
}

// GET /v1/libros/ranking/:tipo?limit=n
func (h *Controller) Rank(c echo.Context) error {
	limit := 10
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return respond.Error(c, http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	rows, err := h.Svc.Rank(c.Request().Context(), librosvc.Ranking(c.Param("tipo")), limit)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "ranking obtenido", rows)
}

type updateReq struct {
	Titulo        *string `json:"titulo"`
	Autor         *string `json:"autor"`
	Categoria     *string `json:"categoria"`
	Anio          *int    `json:"anio"`
	Issbn         *string `json:"issbn"`
	Sinopsis      *string `json:"sinopsis"`
	ImagenPortada *string `json:"imagen_portada"`
	RutaLibro     *string `json:"ruta_libro"`
}

// PUT /v1/libros/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	l, err := h.Svc.Update(c.Request().Context(), id, librorepo.Update{
		Titulo:        req.Titulo,
		Autor:         req.Autor,
		Categoria:     req.Categoria,
		Anio:          req.Anio,
		Issbn:         req.Issbn,
		Sinopsis:      req.Sinopsis,
		ImagenPortada: req.ImagenPortada,
		RutaLibro:     req.RutaLibro,
	})
	if err != nil {
		h.Log.Error("libro update error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libro actualizado", l)
}

// DELETE /v1/libros/:id  (admin, soft)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "forbidden")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "libro eliminado lógicamente", nil)
}
