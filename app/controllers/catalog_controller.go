package controllers

import (
	"github.com/shashiranjanraj/kapee/app/services"
	"github.com/shashiranjanraj/kapee/pkg/ctx"
)

type productRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
	SalePrice   float64 `json:"salePrice" validate:"gte=0"`
	Stock       int     `json:"stock"`
	Status      string  `json:"status" validate:"nullable,in=Selling|Out of Stock"`
	Published   bool    `json:"published"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	SKU         string  `json:"sku" validate:"nullable,max=64"`
}

type stockRequest struct {
	Stock int `json:"stock"`
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func (pc *ProductController) List(c *ctx.Context) {
	products, err := pc.products.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

func (pc *ProductController) Get(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	product, err := pc.products.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (pc *ProductController) Create(c *ctx.Context) {
	var in productRequest
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Create(c.Context(), services.ProductInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(product)
}

func (pc *ProductController) Update(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in productRequest
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Update(c.Context(), id, services.ProductInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (pc *ProductController) TogglePublished(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	product, err := pc.products.TogglePublished(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (pc *ProductController) UpdateStock(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in stockRequest
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.SetStock(c.Context(), id, in.Stock)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

func (pc *ProductController) Delete(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := pc.products.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product deleted")
}

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) List(c *ctx.Context) {
	categories, err := cc.categories.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(categories)
}

func (cc *CategoryController) Get(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	category, err := cc.categories.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(category)
}

func (cc *CategoryController) Create(c *ctx.Context) {
	var in categoryRequest
	if !c.BindJSON(&in) {
		return
	}
	category, err := cc.categories.Create(c.Context(), services.CategoryInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(category)
}

func (cc *CategoryController) Update(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var in categoryRequest
	if !c.BindJSON(&in) {
		return
	}
	category, err := cc.categories.Update(c.Context(), id, services.CategoryInput(in))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(category)
}

func (cc *CategoryController) Delete(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := cc.categories.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Category deleted")
}
