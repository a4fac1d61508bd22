package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/auth"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/comentario"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/libro"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/persona"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/reporte"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/controller/sugerencia"
	"github.com/Luis24M/biblioinfo-back/app/echoServer/jwtx"
)

type C struct {
	Auth       *auth.Controller
	Persona    *persona.Controller
	Libro      *libro.Controller
	Comentario *comentario.Controller
	Sugerencia *sugerencia.Controller
	Reporte    *reporte.Controller
	JWTSecret  string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// identity extraction: every protected handler reads user_id / role
	// from the context instead of re-parsing the token.
	v1.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			ctx.Set("role", jwtx.RolFromContext(ctx))
			return next(ctx)
		}
	})

	// Personas
	v1.POST("/personas/register", c.Persona.Create)
	v1.GET("/personas/user/:userId", c.Persona.ByUser)
	v1.GET("/personas/allpersonas", c.Persona.List)
	v1.PUT("/personas/update/:personaId", c.Persona.Update)
	v1.PUT("/personas/:id/desactivar", c.Persona.Deactivate)
	v1.POST("/personas/guardar-libro", c.Persona.SaveLibro)
	v1.POST("/personas/eliminar-libro-guardado", c.Persona.RemoveSavedLibro)
	v1.GET("/personas/:id_persona/libros-guardados", c.Persona.SavedLibros)

	// Libros
	v1.GET("/libros", c.Libro.List)
	v1.GET("/libros/all", c.Libro.ListAll)
	v1.GET("/libros/:id", c.Libro.Detail)
	v1.GET("/libros/persona/:id_persona", c.Libro.ByPersona)
	v1.GET("/libros/ranking/:tipo", c.Libro.Rank)
	// Admin endpoints
	v1.POST("/libros", c.Libro.Create)
	v1.PUT("/libros/:id", c.Libro.Update)
	v1.DELETE("/libros/:id", c.Libro.Delete)

	// Comentarios
	v1.POST("/comentarios", c.Comentario.Submit)
	v1.GET("/comentarios/libro/:id", c.Comentario.ByLibro)
	v1.GET("/comentarios/persona/:id", c.Comentario.ByPersona)
	v1.PUT("/comentarios/:id", c.Comentario.Edit)
	v1.DELETE("/comentarios/:id", c.Comentario.Retract)
	v1.POST("/comentarios/:id/respuestas", c.Comentario.AddRespuesta)
	v1.DELETE("/comentarios/:id/respuestas/:id_respuesta", c.Comentario.RetractRespuesta)

	// Sugerencias
	v1.POST("/sugerencias", c.Sugerencia.Propose)
	v1.GET("/sugerencias", c.Sugerencia.List)
	v1.GET("/sugerencias/:id/completa", c.Sugerencia.Completa)
	v1.PUT("/sugerencias/:id/decision", c.Sugerencia.Decide)
	v1.DELETE("/sugerencias/:id", c.Sugerencia.Remove)

	// Reportes
	v1.POST("/reportes", c.Reporte.File)
	v1.GET("/reportes", c.Reporte.List)
	v1.PUT("/reportes/:id/resolver", c.Reporte.Resolve)
}
