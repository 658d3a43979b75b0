package controllers

import (
	"net/http"

	"toollend/app"

	"github.com/gin-gonic/gin"
)

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// GET /admin/dashboard
func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.Repo.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
