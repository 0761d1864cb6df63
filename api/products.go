package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hesham156/wafarle/pkg/currency"
	"github.com/hesham156/wafarle/pkg/models"
	"gorm.io/gorm"
)

func (s *Server) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.WithContext(c.Request.Context()).
		Model(&models.Product{}).
		Where("is_active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	var product models.Product
	err := s.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_active = ?", c.Param("id"), true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"product": product}
	base := s.config.Currency.Base
	if code := c.Query("currency"); code != "" && currency.IsValid(code) {
		converted := currency.Convert(product.Price, base, code)
		resp["display_price"] = gin.H{
			"currency":  code,
			"amount":    converted,
			"formatted": currency.FormatWithFlag(converted, code),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currencies": currency.List(),
		"default":    s.config.Currency.Base,
	})
}
