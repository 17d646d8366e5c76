package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abm5616/farmcloud/catalog"
)

// CatalogController serves the read-only lookups that populate the
// order form: customers, available animals and active offers.
type CatalogController struct {
	catalog catalog.Accessor
}

func NewCatalogController(accessor catalog.Accessor) *CatalogController {
	return &CatalogController{catalog: accessor}
}

func (cc *CatalogController) GetCustomers(c *gin.Context) {
	customers, err := cc.catalog.ListCustomers(c.Request.Context())
	if err != nil {
		slog.Error("failed to list customers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (cc *CatalogController) GetAnimals(c *gin.Context) {
	animals, err := cc.catalog.ListAvailableAnimals(c.Request.Context())
	if err != nil {
		slog.Error("failed to list animals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load animals"})
		return
	}
	c.JSON(http.StatusOK, animals)
}

func (cc *CatalogController) GetOffers(c *gin.Context) {
	offers, err := cc.catalog.ListActiveOffers(c.Request.Context())
	if err != nil {
		slog.Error("failed to list offers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load offers"})
		return
	}
	c.JSON(http.StatusOK, offers)
}
