package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jpcardenas/tienda-backoffice/internal/catalog"
)

func registerCatalogRoutes(r *gin.Engine, store *catalog.Store) {
	r.GET("/products", func(c *gin.Context) {
		products, err := store.ListProducts(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	r.GET("/products/:id", func(c *gin.Context) {
		p, err := store.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.GET("/categories/:id", func(c *gin.Context) {
		cat, err := store.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if cat == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		c.JSON(http.StatusOK, cat)
	})

	r.GET("/categories", func(c *gin.Context) {
		categories, err := store.ListCategories(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	})
}
