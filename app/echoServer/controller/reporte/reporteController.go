package reporte

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

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

type fileReq struct {
	IDComentario string `json:"id_comentario" validate:"required"`
	IDRespuesta  string `json:"id_respuesta"`
	IDPersona    string `json:"id_persona" validate:"required"`
	Motivo       string `json:"motivo" validate:"required"`
}

// POST /v1/reportes
func (h *Controller) File(c echo.Context) error {
	var req fileReq
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "validation error")
	}
	comentarioID, ok1 := oid(req.IDComentario)
	personaID, ok2 := oid(req.IDPersona)
	if !ok1 || !ok2 {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	svcReq := moderacionsvc.ReporteReq{
		ComentarioID: comentarioID,
		PersonaID:    personaID,
		Motivo:       req.Motivo,
	}
	if req.IDRespuesta != "" {
		respID, ok := oid(req.IDRespuesta)
		if !ok {
			return respond.Error(c, http.StatusBadRequest, "invalid id_respuesta")
		}
		svcReq.RespuestaID = &respID
	}

	rp, err := h.Svc.FileReporte(c.Request().Context(), svcReq)
	if err != nil {
		h.Log.Error("reporte create error", "err", err)
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusCreated, "reporte creado", rp)
}

// GET /v1/reportes?activos=false  (admin; active ones by default)
func (h *Controller) List(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "solo administradores")
	}
	activeOnly := c.QueryParam("activos") != "false"
	rows, err := h.Svc.ListReportes(c.Request().Context(), activeOnly)
	if err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "reportes obtenidos", rows)
}

// PUT /v1/reportes/:id/resolver  (admin)
func (h *Controller) Resolve(c echo.Context) error {
	if !isAdmin(c) {
		return respond.Error(c, http.StatusForbidden, "solo administradores")
	}
	id, ok := oid(c.Param("id"))
	if !ok {
		return respond.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.ResolveReporte(c.Request().Context(), id); err != nil {
		return respond.FromError(c, err)
	}
	return respond.Success(c, http.StatusOK, "reporte resuelto", nil)
}
