package server

import (
	"net/http"
	"strings"

	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	SubscriptionID string  `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		SubscriptionID: strings.TrimSpace(req.SubscriptionID),
		Amount:         req.Amount,
		Currency:       strings.TrimSpace(req.Currency),
		Status:         strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), id, orderdomain.UpdateOrderStatusRequest{
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
