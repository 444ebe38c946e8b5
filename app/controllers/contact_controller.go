package controllers

import (
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactController struct {
	contacts *services.ContactService
}

func NewContactController(contacts *services.ContactService) *ContactController {
	return &ContactController{contacts: contacts}
}

func (cc *ContactController) Submit(c *ctx.Context) {
	var in contactRequest
	if !c.BindJSON(&in) {
		return
	}
	contact, err := cc.contacts.Submit(c.Context(), services.ContactInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(contact)
}

func (cc *ContactController) List(c *ctx.Context) {
	contacts, err := cc.contacts.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(contacts)
}
