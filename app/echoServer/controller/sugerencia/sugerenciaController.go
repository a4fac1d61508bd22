package sugerencia

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Luis24M/biblioinfo-back/app/echoServer/jwtx"
	"github.com/Luis24M/biblioinfo-back/model"
	moderacionsvc "github.com/Luis24M/biblioinfo-back/service/moderacion"
	"github.com/Luis24M/biblioinfo-back/util/respond"
)

type Controller struct {
	Svc moderacionsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	rol, _ := c.Get("role").(string)
	return rol == string(model.RolAdministrador)
}

func oid(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

type proposeReq struct {
	IDPersona string `json:"id_persona"`
	moderacionsvc.ProposeReq
}

// POST /v1/sugerencias
func (h *Controller) Propose(c echo.Context) error {
	var req proposeReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req.ProposeReq); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}

	personaID, ok := oid(req.IDPersona)
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id_persona")
	}

	p, err := h.Svc.Propose(c.Request().Context(), personaID, req.ProposeReq)
	if err != nil {
		h.Log.Error("sugerencia create error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "sugerencia creada", p)
}

// GET /v1/sugerencias?estado_revision=pendiente
func (h *Controller) List(c echo.Context) error {
	var revision *model.EstadoRevision
	if q := c.QueryParam("estado_revision"); q != "" {
		r := model.EstadoRevision(q)
		if r != model.RevisionPendiente && !r.Terminal() {
			return respond.Error(c, http.StatusBadRequest, "estado_revision inválido")
		}
		revision = &r
	}
	rows, err := h.Svc.ListSugerencias(c.Request().Context(), revision)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "sugerencias obtenidas", rows)
}

// GET /v1/sugerencias/:id/completa
func (h *Controller) Completa(c echo.Context) error {
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	full, err := h.Svc.SugerenciaCompleta(c.Request().Context(), id)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "sugerencia obtenida", full)
}

type decisionReq struct {
	EstadoRevision string `json:"estado_revision" validate:"required"`
}

// PUT /v1/sugerencias/:id/decision  (admin)
func (h *Controller) Decide(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "solo administradores")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}

	sg, err := h.Svc.Decide(c.Request().Context(), id, model.EstadoRevision(req.EstadoRevision))
	if err != nil {
		h.Log.Error("sugerencia decision error", "err", err, "id", id.Hex(), "admin", jwtx.RolFromContext(c))
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "sugerencia actualizada", sg)
}

// DELETE /v1/sugerencias/:id  (admin, soft)
func (h *Controller) Remove(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "solo administradores")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.RemoveSugerencia(c.Request().Context(), id); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "sugerencia eliminada lógicamente", nil)
}
