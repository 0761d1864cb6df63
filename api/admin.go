package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/auth"
	"github.com/hesham156/wafarle/pkg/checkout"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

type productRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	OriginalPrice float64 `json:"original_price"`
	ImageURL      string  `json:"image_url"`
	Category      string  `json:"category"`
	IsActive      *bool   `json:"is_active"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		IsActive:      true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.db.WithContext(c.Request.Context()).Create(product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	var product models.Product
	err := s.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req productRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":           req.Name,
		"description":    req.Description,
		"price":          req.Price,
		"original_price": req.OriginalPrice,
		"image_url":      req.ImageURL,
		"category":       req.Category,
		"updated_at":     time.Now(),
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.db.WithContext(c.Request.Context()).Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteProduct(c *gin.Context) {
	result := s.db.WithContext(c.Request.Context()).
		Where("id = ?", c.Param("id")).
		Delete(&models.Product{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := s.checkout.ListAllOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.checkout.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, checkout.ErrBadOrderStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"message": "Order status updated successfully",
	})
}

func (s *Server) listUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.WithContext(c.Request.Context()).Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) updateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !auth.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	var target models.User
	err := s.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Changing a role needs rank over the target, and nobody hands out a
	// role above their own.
	session := s.session(c)
	if !auth.HasHigherRole(session.Role, target.Role) || auth.HasHigherRole(req.Role, session.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	if err := s.db.WithContext(c.Request.Context()).Model(&target).Update("role", req.Role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go s.mongo.CreateAuditLog(context.Background(), &repository.AuditLog{
		Service:  "storefront",
		Action:   repository.AuditActionRoleChange,
		EntityID: target.ID,
		Data:     bson.M{"role": req.Role, "changed_by": session.UserID},
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getSettings(c *gin.Context) {
	var settings []models.Setting
	if err := s.db.WithContext(c.Request.Context()).Find(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	c.JSON(http.StatusOK, gin.H{"settings": values})
}

func (s *Server) updateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.BindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := s.session(c)
	for key, value := range values {
		setting := models.Setting{
			Key:       key,
			Value:     value,
			UpdatedBy: session.UserID,
			UpdatedAt: time.Now(),
		}
		if err := s.db.WithContext(c.Request.Context()).Save(&setting).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) dashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	var userCount, productCount, orderCount, pendingCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).Count(&productCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var revenue float64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderStatusPaid, models.OrderStatusCompleted}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":          userCount,
		"products":       productCount,
		"orders":         orderCount,
		"pending_orders": pendingCount,
		"revenue":        revenue,
	})
}

// recentActivity lists audit entries, newest first. With entity_id it
// narrows to one user's or guest's trail.
func (s *Server) recentActivity(c *gin.Context) {
	var (
		logs []*repository.AuditLog
		err  error
	)
	if entityID := c.Query("entity_id"); entityID != "" {
		logs, err = s.mongo.GetAuditLogs(c.Request.Context(), entityID, 50)
	} else {
		logs, err = s.mongo.RecentAuditLogs(c.Request.Context(), 50)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs})
}
