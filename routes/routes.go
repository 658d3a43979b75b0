package routes

import (
	"time"

	"toollend/app"
	"toollend/controllers"
)

func RegisterRoutes(r *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(r)
	authCtl := controllers.GetAuthController(s)
	uc := controllers.GetUserController(s)
	itemCtl := controllers.NewItemController(s)
	borrowCtl := controllers.NewBorrowController(s)
	inviteCtl := controllers.GetInviteController(s)
	dashCtl := controllers.NewDashboardController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo, r.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, r.RDB, 5*time.Minute)

	// ------------------------------
	// 注册/登录（公开）
	// ------------------------------
	auth := r.Router.Group("/api/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.Whoami)
	}

	// ------------------------------
	// 目录/库存
	// ------------------------------
	items := r.Router.Group("/api/items", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems)
		items.GET("/:id", itemCtl.GetItem)
	}
	itemsAdmin := r.Router.Group("/api/items", authMW, adminMW)
	{
		itemsAdmin.POST("", itemCtl.CreateItem)
		itemsAdmin.PUT("/:id", itemCtl.UpdateItem)
		itemsAdmin.POST("/:id/retire", itemCtl.RetireItem)
		itemsAdmin.PUT("/:id/quantity", itemCtl.SetQuantity)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	borrows := r.Router.Group("/api/borrows", authMW, seenMW)
	{
		borrows.POST("", borrowCtl.Checkout)
		borrows.GET("", borrowCtl.ListMyBorrows) // ?status=active|returned
		borrows.GET("/:id", borrowCtl.GetBorrow)
		borrows.POST("/:id/return", borrowCtl.Return)
		borrows.GET("/:id/conditions", borrowCtl.ListConditions)
	}

	// ------------------------------
	// 管理端
	// ------------------------------
	users := r.Router.Group("/api/users", authMW, adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.DELETE("/:id", uc.DeleteUser)
		users.PUT("/:id/admin", uc.SetAdmin)
	}

	admin := r.Router.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
		admin.GET("/dashboard", dashCtl.Stats)
		admin.GET("/borrows", borrowCtl.AdminListBorrows) // ?status=&overdue=&page=&size=
	}
}
