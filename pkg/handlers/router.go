package handlers

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(blog *Blog, staticRoot string) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(blog.Log), gin.Recovery())

	r.Static("/static", staticRoot)

	r.GET("/", blog.Index)
	r.GET("/blog/:article_name", blog.Article)
	r.NoRoute(NotFound)

	return r
}
