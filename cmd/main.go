package main

import (
	"trackfit/config"
	"trackfit/routes"
	"trackfit/services"
)

func main() {
	config.InitDB()
	rt := services.NewRealtimeHub()
	r := routes.SetupRouter(rt)
	r.Run(":8080")
}
