package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		txns := api.Group("/transactions")
		txns.POST("", handler.AddTransaction)
		txns.POST("/batch", handler.AddTransactionsBatch)
		txns.POST("/import", handler.ImportTransactions)
		txns.GET("/export", handler.ExportTransactions)
		txns.GET("", handler.ListTransactions)
		txns.GET("/:id", handler.GetTransaction)
		txns.PUT("/:id", handler.UpdateTransaction)
		txns.DELETE("/:id", handler.DeleteTransaction)

		api.GET("/tickers", handler.ListTickers)
		api.POST("/tickers/refresh", handler.RefreshTickers)

		portfolio := api.Group("/portfolio")
		portfolio.GET("/summary", handler.GetSummary)
		portfolio.GET("/allocation", handler.GetAllocation)
		portfolio.GET("/yearly", handler.GetYearly)
		portfolio.GET("/projection", handler.GetProjection)
		portfolio.GET("/projection/series", handler.GetProjectionSeries)
		portfolio.GET("/holdings", handler.ListHoldings)
		portfolio.GET("/holdings/:symbol", handler.GetHolding)
		portfolio.GET("/movers", handler.GetMovers)
		portfolio.GET("/insights", handler.GetInsights)
		portfolio.GET("/benchmark", handler.GetBenchmark)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
