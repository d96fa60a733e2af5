package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/jpcardenas/tienda-backoffice/internal/clients"
	"github.com/jpcardenas/tienda-backoffice/internal/validation"
)

func registerClientRoutes(r *gin.Engine, v *validatorv10.Validate, store *clients.Store) {
	r.POST("/clients", func(c *gin.Context) {
		var req validation.CreateClientRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		client := clients.Client{
			Email:                req.Email,
			Name:                 req.Name,
			IdentificationNumber: req.IdentificationNumber,
			ContactNumber:        req.ContactNumber,
			Address:              req.Address,
		}
		if err := store.Create(c.Request.Context(), client); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"email": client.Email})
	})

	r.GET("/clients", func(c *gin.Context) {
		all, err := store.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": all})
	})
}
