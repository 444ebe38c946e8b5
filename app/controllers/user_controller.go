package controllers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

type registerRequest struct {
	Name     string `json:"Name"`
	Email    string `json:"Email" validate:"required,email"`
	Password string `json:"Password" validate:"required,max=72"`
	Role     string `json:"Role"`
}

type loginRequest struct {
	Email    string `json:"Email" validate:"required"`
	Password string `json:"Password" validate:"required"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,in=user|admin"`
}

type UserController struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewUserController(auth *services.AuthService, users *services.UserService) *UserController {
	return &UserController{auth: auth, users: users}
}

// Register signs a user up. The route runs optional auth so an admin caller
// may set the role.
func (uc *UserController) Register(c *ctx.Context) {
	var in registerRequest
	if !c.BindJSON(&in) {
		return
	}

	res, err := uc.auth.Register(c.Context(), c.User(), services.RegisterInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(res)
}

func (uc *UserController) Login(c *ctx.Context) {
	var in loginRequest
	if !c.BindJSON(&in) {
		return
	}

	res, err := uc.auth.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

func (uc *UserController) Logout(c *ctx.Context) {
	if err := uc.auth.Logout(c.Context(), c.User()); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Logged out")
}

func (uc *UserController) List(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(users)
}

// Get returns a user. Non-admins may only read their own record.
func (uc *UserController) Get(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if me := c.User(); !me.IsAdmin() && me.ID != id {
		c.Fail(apperr.New(apperr.Forbidden, "Admin access required"))
		return
	}

	user, err := uc.users.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (uc *UserController) Delete(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := uc.users.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("User deleted")
}

func (uc *UserController) BulkDelete(c *ctx.Context) {
	var in bulkDeleteRequest
	if !c.BindJSON(&in) {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.Fail(apperr.New(apperr.InvalidInput, "Invalid user id "+raw))
			return
		}
		ids = append(ids, id)
	}

	n, err := uc.users.BulkDelete(c.Context(), ids)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]int64{"deleted": n})
}

func (uc *UserController) UpdateRole(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in roleRequest
	if !c.BindJSON(&in) {
		return
	}

	user, err := uc.users.UpdateRole(c.Context(), id, in.Role)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (uc *UserController) Stats(c *ctx.Context) {
	stats, err := uc.users.Stats(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(stats)
}
