package main

import (
	"github.com/gin-gonic/gin"

	"github.com/HushmKun/SeekerOfLight/internal/app"
	"github.com/HushmKun/SeekerOfLight/internal/config"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
