package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

func catalogFilterFrom(c *gin.Context) models.CatalogFilter {
	filter := models.CatalogFilter{
		Brand: c.Query("brand"),
	}
	if v, err := strconv.ParseFloat(c.Query("priceMin"), 64); err == nil {
		filter.PriceMin = v
	}
	if v, err := strconv.ParseFloat(c.Query("priceMax"), 64); err == nil {
		filter.PriceMax = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = v
	}
	return filter
}

func (s *Server) handleCatalogList(c *gin.Context) {
	products, err := s.deps.Catalog.List(c.Request.Context(), catalogFilterFrom(c))
	if err != nil {
		s.respondError(c, err, "catalog_list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (s *Server) handleCatalogDetail(c *gin.Context) {
	product, err := s.deps.Catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "catalog_detail")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) handleCatalogSearch(c *gin.Context) {
	products, err := s.deps.Search.Search(c.Request.Context(), c.Query("q"), catalogFilterFrom(c))
	if err != nil {
		s.respondError(c, err, "catalog_search")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (s *Server) handleCatalogBrands(c *gin.Context) {
	brands, err := s.deps.Catalog.Brands(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "catalog_brands")
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}
