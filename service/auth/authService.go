package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/Luis24M/biblioinfo-back/model"
	userrepo "github.com/Luis24M/biblioinfo-back/repository/user"
	"github.com/Luis24M/biblioinfo-back/util/apperr"
	"github.com/Luis24M/biblioinfo-back/util/hash"
	jwtutil "github.com/Luis24M/biblioinfo-back/util/jwt"
)

var (
	ErrInvalidCreds = errors.New("invalid usuario or password")
	ErrDisabled     = errors.New("account disabled")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur         userrepo.Repo
	secret     string
	bcryptCost int
}

func New(ur userrepo.Repo, secret string, bcryptCost int) Service {
	return &service{ur: ur, secret: secret, bcryptCost: bcryptCost}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	usuario := strings.TrimSpace(req.Usuario)
	if usuario == "" || len(req.Password) < 6 {
		return nil, "", apperr.New(apperr.Validation, "usuario and password are required")
	}
	rol := model.Rol(req.Rol)
	if rol != model.RolAdministrador && rol != model.RolEstudiante {
		return nil, "", apperr.New(apperr.Validation, "unknown rol")
	}

	hashed, err := hash.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Usuario:      usuario,
		PasswordHash: hashed,
		Rol:          rol,
		Estado:       true,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID.Hex(), string(u.Rol), 4)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	usuario := strings.TrimSpace(req.Usuario)
	if usuario == "" || req.Password == "" {
		return nil, "", apperr.New(apperr.Validation, "usuario and password are required")
	}

	u, err := s.ur.ByUsuario(ctx, usuario)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	if !u.Estado {
		return nil, "", ErrDisabled
	}

	token, err := jwtutil.Issue(s.secret, u.ID.Hex(), string(u.Rol), 4)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
