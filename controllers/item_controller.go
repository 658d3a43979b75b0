// controllers/item_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"toollend/app"
	"toollend/db"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

func itemErrStatus(err error) int {
	switch {
	case errors.Is(err, db.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrUnitsStillOut), errors.Is(err, db.ErrShrinkBelowIssued):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// 管理员创建一个目录条目（含初始库存）
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in struct {
		Name        string `json:"name" binding:"required"`
		Serial      string `json:"serial" binding:"required"`
		Category    string `json:"category"`
		Description string `json:"description"`
		ImageURL    string `json:"imageUrl"`
		Quantity    int    `json:"quantity" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.CreateItem(c.Request.Context(), db.CreateItemInput{
		Serial:      in.Serial,
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Quantity:    in.Quantity,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

// 列表（含库存计数）
func (ic *ItemController) ListItems(c *gin.Context) {
	q := db.ItemsQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ic.Repo.ListItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "items": res.Items})
}

func (ic *ItemController) GetItem(c *gin.Context) {
	row, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(itemErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, row)
}

// PUT /api/items/:id（元数据，不动库存）
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in struct {
		Name        *string `json:"name"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		ImageURL    *string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), db.UpdateItemInput{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		c.JSON(itemErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}

// POST /api/items/:id/retire（软删除）
func (ic *ItemController) RetireItem(c *gin.Context) {
	if err := ic.Repo.RetireItem(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(itemErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// PUT /api/items/:id/quantity（调整总量）
func (ic *ItemController) SetQuantity(c *gin.Context) {
	var in struct {
		Total int `json:"total" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	inv, err := ic.Repo.SetItemQuantity(c.Request.Context(), c.Param("id"), in.Total)
	if err != nil {
		c.JSON(itemErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inv)
}
