package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
	"github.com/jpcardenas/tienda-backoffice/internal/cart"
	"github.com/jpcardenas/tienda-backoffice/internal/payments"
	"github.com/jpcardenas/tienda-backoffice/internal/purchases"
	"github.com/jpcardenas/tienda-backoffice/internal/validation"
)

func registerPaymentRoutes(r *gin.Engine, v *validatorv10.Validate, svc *purchases.Service, store *purchases.Store, publisher *aws.Publisher) {
	r.POST("/payment/create", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreatePurchaseRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		items := make([]cart.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, cart.Item{
				ProductID:     string(it.ProductID),
				Quantity:      it.Quantity,
				SelectedColor: it.SelectedColor,
			})
		}

		res, err := svc.CreatePurchase(ctx, purchases.CreatePurchaseRequest{
			BuyerEmail:                req.BuyerEmail,
			BuyerName:                 req.BuyerName,
			BuyerIdentificationNumber: req.BuyerIdentificationNumber,
			BuyerContactNumber:        req.BuyerContactNumber,
			ShippingAddress:           req.ShippingAddress,
			Items:                     items,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"purchase": gin.H{
				"id":          res.PurchaseID,
				"totalAmount": res.TotalAmount,
				"currency":    res.Currency,
				"status":      res.Status,
				"orderStatus": res.OrderStatus,
				"items":       res.Items,
			},
			"payment": gin.H{
				"wompiTransactionId": res.TransactionID,
				"paymentUrl":         res.PaymentURL,
				"provider":           res.Provider,
			},
		})
	})

	// Gateway callback. Events are enqueued and reconciled by the worker so
	// a slow DynamoDB write never makes the gateway time out and re-deliver.
	r.POST("/payment/webhook", func(c *gin.Context) {
		ctx := c.Request.Context()

		var ev validation.WebhookEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_event_body"})
			return
		}

		status := payments.MapEventStatus(ev.Data.Transaction.Status)
		if status == "" {
			log.Printf("[api] ignoring webhook with unknown status %q", ev.Data.Transaction.Status)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		payload, _ := json.Marshal(map[string]string{
			"type":               "payment.updated",
			"transaction_id":     ev.Data.Transaction.ID,
			"status":             status,
			"external_reference": ev.Data.Transaction.Reference,
		})
		attrs := map[string]string{
			"event_type":     "payment.updated",
			"transaction_id": ev.Data.Transaction.ID,
		}
		if err := publisher.SendPaymentEvent(ctx, string(payload), attrs); err != nil {
			// 5xx so the gateway re-delivers the event
			log.Printf("[api] enqueue payment event failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	})

	r.GET("/purchases", func(c *gin.Context) {
		all, err := store.ListWithDetails(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"purchases": all})
	})

	r.GET("/purchases/:id", func(c *gin.Context) {
		id := c.Param("id")
		p, details, err := store.GetWithDetails(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase_not_found"})
			return
		}
		c.JSON(http.StatusOK, purchases.PurchaseWithDetails{Purchase: *p, Details: details})
	})
}
