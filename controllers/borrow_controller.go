// controllers/borrow_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"toollend/app"
	"toollend/db"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// 领域错误 → HTTP 状态码
func borrowErrStatus(err error) int {
	switch {
	case errors.Is(err, db.ErrReceiptNotFound),
		errors.Is(err, db.ErrLineNotFound),
		errors.Is(err, db.ErrItemNotFound),
		errors.Is(err, db.ErrInventoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrNotReceiptOwner):
		return http.StatusForbidden
	case errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrQuantityExceeded),
		errors.Is(err, db.ErrInventoryState),
		errors.Is(err, db.ErrDuplicateItem),
		errors.Is(err, db.ErrItemRetired):
		return http.StatusConflict
	case errors.Is(err, db.ErrEmptyCheckout),
		errors.Is(err, db.ErrEmptyReturn),
		errors.Is(err, db.ErrInvalidQuantity),
		errors.Is(err, db.ErrInvalidCondition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type checkoutLineReq struct {
	ItemID   string `json:"itemId" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type checkoutReq struct {
	Lines    []checkoutLineReq `json:"lines" binding:"required,min=1,dive"`
	DueAt    *time.Time        `json:"dueAt"`
	Subject  string            `json:"subject"`
	Lecturer string            `json:"lecturer"`
	Notes    string            `json:"notes"`
}

// POST /api/borrows（结账：购物车 → 收据）
func (bc *BorrowController) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in checkoutReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	lines := make([]db.CheckoutLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, db.CheckoutLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	receipt, err := bc.Repo.Checkout(c.Request.Context(), db.CheckoutInput{
		UserID:   userID,
		Lines:    lines,
		DueAt:    in.DueAt,
		Subject:  in.Subject,
		Lecturer: in.Lecturer,
		Notes:    in.Notes,
	})
	if err != nil {
		c.JSON(borrowErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

type returnLineReq struct {
	ItemID    string `json:"itemId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Condition string `json:"condition" binding:"required,oneof=good damaged_or_broken lost missing"`
	Notes     string `json:"notes"`
}

type returnReq struct {
	Lines []returnLineReq `json:"lines" binding:"required,min=1,dive"`
}

// POST /api/borrows/:id/return
func (bc *BorrowController) Return(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	receiptID := c.Param("id")
	if receiptID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing receipt id"})
		return
	}
	var in returnReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	lines := make([]db.ReturnLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, db.ReturnLine{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			Condition: l.Condition,
			Notes:     l.Notes,
		})
	}
	receipt, err := bc.Repo.ReturnItems(c.Request.Context(), userID, receiptID, lines)
	if err != nil {
		c.JSON(borrowErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// GET /api/borrows?status=active|returned
func (bc *BorrowController) ListMyBorrows(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	rcs, err := bc.Repo.ListReceipts(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rcs})
}

// GET /api/borrows/:id
func (bc *BorrowController) GetBorrow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	receipt, err := bc.Repo.GetReceipt(c.Request.Context(), userID, isAdmin(c), c.Param("id"))
	if err != nil {
		c.JSON(borrowErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// GET /api/borrows/:id/conditions（归还记录，只读）
func (bc *BorrowController) ListConditions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	conds, err := bc.Repo.ListReturnConditions(c.Request.Context(), userID, isAdmin(c), c.Param("id"))
	if err != nil {
		c.JSON(borrowErrStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": conds})
}

// GET /admin/borrows?status=&overdue=&page=&size=
func (bc *BorrowController) AdminListBorrows(c *gin.Context) {
	q := db.AdminBorrowsQuery{
		Status:  c.Query("status"),
		Overdue: c.Query("overdue") == "true",
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := bc.Repo.ListReceiptsAdmin(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "total": res.Total, "items": res.Items})
}
