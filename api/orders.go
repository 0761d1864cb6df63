package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hesham156/wafarle/pkg/checkout"
	"github.com/hesham156/wafarle/pkg/models"
)

type placeOrderRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := s.session(c)
	order, err := s.checkout.PlaceOrder(c.Request.Context(), session.UserID, checkout.PlaceOrderInput{
		Contact: models.ContactInfo{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart),
			errors.Is(err, checkout.ErrIncompleteContact),
			errors.Is(err, checkout.ErrBadPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":   order,
		"message": "Order created successfully",
	})
}

func (s *Server) listOrders(c *gin.Context) {
	session := s.session(c)
	orders, err := s.checkout.ListOrders(c.Request.Context(), session.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

func (s *Server) getOrder(c *gin.Context) {
	session := s.session(c)
	order, err := s.checkout.GetOrder(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, checkout.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
