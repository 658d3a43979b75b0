package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"toollend/db"
	"toollend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBorrowTest(t *testing.T) (*BorrowController, *db.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// :memory: 是按连接隔离的，限制连接池只用一条
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	repo := db.NewRepo(gdb)
	return NewBorrowController(&Srv{Repo: repo}), repo
}

func jsonCtx(t *testing.T, w *httptest.ResponseRecorder, userID, method, target string, body any) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		c.Set("userID", userID)
	}
	return c
}

func seedCatalogItem(t *testing.T, repo *db.Repo, qty int) *models.Item {
	t.Helper()
	it, err := repo.CreateItem(context.Background(), db.CreateItemInput{
		Serial:   "SN-" + uuid.NewString()[:8],
		Name:     "Bench Vise",
		Quantity: qty,
	})
	require.NoError(t, err)
	return it
}

func TestCheckoutEndpoint(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 5)
	uid := uuid.NewString()

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uid, "POST", "/api/borrows", gin.H{
		"lines":   []gin.H{{"itemId": it.ID, "quantity": 2}},
		"subject": "ME-210",
	})

	bc.Checkout(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rc models.BorrowReceipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rc))
	assert.Equal(t, uid, rc.UserID)
	assert.Equal(t, models.BorrowStatusActive, rc.Status)
	require.Len(t, rc.Lines, 1)
	assert.Equal(t, 2, rc.Lines[0].Quantity)
}

func TestCheckoutEndpointInsufficientStock(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 1)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uuid.NewString(), "POST", "/api/borrows", gin.H{
		"lines": []gin.H{{"itemId": it.ID, "quantity": 3}},
	})

	bc.Checkout(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutEndpointValidation(t *testing.T) {
	bc, _ := setupBorrowTest(t)

	// 空购物车被绑定校验拦截
	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uuid.NewString(), "POST", "/api/borrows", gin.H{"lines": []gin.H{}})
	bc.Checkout(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未登录
	w = httptest.NewRecorder()
	c = jsonCtx(t, w, "", "POST", "/api/borrows", gin.H{
		"lines": []gin.H{{"itemId": uuid.NewString(), "quantity": 1}},
	})
	bc.Checkout(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReturnEndpoint(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 5)
	uid := uuid.NewString()

	rc, err := repo.Checkout(context.Background(), db.CheckoutInput{
		UserID: uid,
		Lines:  []db.CheckoutLine{{ItemID: it.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uid, "POST", "/api/borrows/"+rc.ID+"/return", gin.H{
		"lines": []gin.H{{"itemId": it.ID, "quantity": 2, "condition": "good"}},
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: rc.ID}}

	bc.Return(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.BorrowReceipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.BorrowStatusReturned, got.Status)
}

func TestReturnEndpointBadCondition(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 5)
	uid := uuid.NewString()

	rc, err := repo.Checkout(context.Background(), db.CheckoutInput{
		UserID: uid,
		Lines:  []db.CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uid, "POST", "/api/borrows/"+rc.ID+"/return", gin.H{
		"lines": []gin.H{{"itemId": it.ID, "quantity": 1, "condition": "meh"}},
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: rc.ID}}

	bc.Return(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnEndpointWrongOwner(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 5)

	rc, err := repo.Checkout(context.Background(), db.CheckoutInput{
		UserID: uuid.NewString(),
		Lines:  []db.CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uuid.NewString(), "POST", "/api/borrows/"+rc.ID+"/return", gin.H{
		"lines": []gin.H{{"itemId": it.ID, "quantity": 1, "condition": "good"}},
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: rc.ID}}

	bc.Return(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetBorrowEndpointNotFound(t *testing.T) {
	bc, _ := setupBorrowTest(t)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uuid.NewString(), "GET", "/api/borrows/"+uuid.NewString(), nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: uuid.NewString()}}

	bc.GetBorrow(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListConditionsEndpoint(t *testing.T) {
	bc, repo := setupBorrowTest(t)
	it := seedCatalogItem(t, repo, 5)
	uid := uuid.NewString()

	rc, err := repo.Checkout(context.Background(), db.CheckoutInput{
		UserID: uid,
		Lines:  []db.CheckoutLine{{ItemID: it.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = repo.ReturnItems(context.Background(), uid, rc.ID, []db.ReturnLine{
		{ItemID: it.ID, Quantity: 1, Condition: models.ConditionDamaged, Notes: "bent jaw"},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := jsonCtx(t, w, uid, "GET", "/api/borrows/"+rc.ID+"/conditions", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: rc.ID}}

	bc.ListConditions(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.ReturnCondition `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.ConditionDamaged, resp.Items[0].Condition)
	assert.Equal(t, "bent jaw", resp.Items[0].Notes)
}
