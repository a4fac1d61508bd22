package comentario

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	resenasvc "github.com/Luis24M/biblioinfo-back/service/resena"
	"github.com/Luis24M/biblioinfo-back/util/respond"
)

type Controller struct {
	Svc resenasvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func oid(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

type submitReq struct {
	IDLibro   string `json:"id_libro" validate:"required"`
	IDPersona string `json:"id_persona" validate:"required"`
	Estrellas int    `json:"cantidad_estrellas_comentario" validate:"required,min=1,max=5"`
	Contenido string `json:"contenido_comentario" validate:"required"`
}

// POST /v1/comentarios
func (h *Controller) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	libroID, ok1 := oid(req.IDLibro)
	personaID, ok2 := oid(req.IDPersona)
	if !ok1 || !ok2 {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}

	cm, err := h.Svc.Submit(c.Request().Context(), libroID, personaID, req.Contenido, req.Estrellas)
	if err != nil {
		h.Log.Error("comentario create error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "comentario creado", cm)
}

// GET /v1/comentarios/libro/:id
func (h *Controller) ByLibro(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	rows, err := h.Svc.ByLibro(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "comentarios obtenidos", rows)
}

// GET /v1/comentarios/persona/:id
func (h *Controller) ByPersona(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	rows, err := h.Svc.ByPersona(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "comentarios obtenidos", rows)
}

// PUT /v1/comentarios/:id
func (h *Controller) Edit(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req resenasvc.EditReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	cm, err := h.Svc.Edit(c.Request().Context(), id, req)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "comentario actualizado", cm)
}

// DELETE /v1/comentarios/:id  (soft)
func (h *Controller) Retract(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.Retract(c.Request().Context(), id); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "comentario eliminado lógicamente", nil)
}

type respuestaReq struct {
	IDPersona string `json:"id_persona" validate:"required"`
	Contenido string `json:"contenido" validate:"required,max=500"`
}

// POST /v1/comentarios/:id/respuestas
func (h *Controller) AddRespuesta(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req respuestaReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	personaID, ok := oid(req.IDPersona)
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	resp, err := h.Svc.AddRespuesta(c.Request().Context(), id, personaID, req.Contenido)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "respuesta creada", resp)
}

// DELETE /v1/comentarios/:id/respuestas/:id_respuesta  (soft)
func (h *Controller) RetractRespuesta(c echo.Context) error {
	id, ok1 := oid(c.Param("id"))
	respID, ok2 := oid(c.Param("id_respuesta"))
	if !ok1 || !ok2 {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.RetractRespuesta(c.Request().Context(), id, respID); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "respuesta eliminada lógicamente", nil)
}
