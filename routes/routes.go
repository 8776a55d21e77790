package routes

import (
	"trackfit/controllers"
	"trackfit/middlewares"
	"trackfit/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter(rt *services.RealtimeHub) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	foodCtl := controllers.NewFoodController(rt)
	realtimeCtl := controllers.NewRealtimeController(rt)

	// Protected per-user food log routes
	user := r.Group("/users/:userId")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/foods", foodCtl.ListFoods)
		user.POST("/foods", foodCtl.AddFood)
		user.PUT("/foods/:foodId", foodCtl.UpdateFood)
		user.DELETE("/foods", foodCtl.DeleteFoods)
		user.GET("/foods/ws", realtimeCtl.FoodsWS)
	}

	return r
}
