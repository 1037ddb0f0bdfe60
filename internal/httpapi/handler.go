package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fixmarket/fixmarket/internal/database"
	apperrors "github.com/fixmarket/fixmarket/internal/errors"
	"github.com/fixmarket/fixmarket/internal/gazetteer"
	"github.com/fixmarket/fixmarket/internal/interfaces"
)

// Handler exposes the offer discovery API over gin.
type Handler struct {
	resolver interfaces.LocationResolverInterface
	search   interfaces.SearchServiceInterface
	offers   interfaces.OfferServiceInterface
}

func NewHandler(resolver interfaces.LocationResolverInterface, search interfaces.SearchServiceInterface, offers interfaces.OfferServiceInterface) *Handler {
	return &Handler{resolver: resolver, search: search, offers: offers}
}

// RegisterRoutes mounts the API under /api. geocodeLimited guards the
// endpoints whose writes may fan out to the external geocoding provider.
func (h *Handler) RegisterRoutes(router gin.IRouter, geocodeLimited gin.HandlerFunc) {
	api := router.Group("/api")

	locations := api.Group("/locations")
	locations.GET("/autocomplete", h.Autocomplete)
	locations.GET("/reverse", h.ReverseLookup)

	offers := api.Group("/offers")
	offers.GET("/search", h.Search)
	offers.GET("/suggest", h.SuggestTitles)
	offers.GET("/:id", h.GetOffer)
	if geocodeLimited != nil {
		offers.POST("", geocodeLimited, h.CreateOffer)
		offers.PUT("/:id", geocodeLimited, h.UpdateOffer)
	} else {
		offers.POST("", h.CreateOffer)
		offers.PUT("/:id", h.UpdateOffer)
	}
}

// Autocomplete returns locality suggestions for live typing. Short or
// unmatched input yields an empty list, never an error.
func (h *Handler) Autocomplete(c *gin.Context) {
	suggestions := h.resolver.Autocomplete(c.Request.Context(), c.Query("q"))
	if suggestions == nil {
		suggestions = []gazetteer.Suggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// ReverseLookup maps raw coordinates to the nearest known locality.
// Malformed input degrades to 204, matching the empty-result contract.
func (h *Handler) ReverseLookup(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.Status(http.StatusNoContent)
		return
	}

	suggestion, ok := h.resolver.ReverseLookup(c.Request.Context(), lat, lon)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// parseOptionalFloat reads a query parameter as an optional float. Absent
// or malformed values read as "no constraint".
func parseOptionalFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Search runs offer discovery with the query-string filter.
func (h *Handler) Search(c *gin.Context) {
	filter := database.SearchFilter{
		Title:        c.Query("title"),
		Category:     c.Query("category"),
		Localisation: c.Query("localisation"),
		MinPrice:     parseOptionalFloat(c, "min_price"),
		MaxPrice:     parseOptionalFloat(c, "max_price"),
		Latitude:     parseOptionalFloat(c, "lat"),
		Longitude:    parseOptionalFloat(c, "lon"),
	}

	offers, err := h.search.Search(c.Request.Context(), filter)
	if err != nil {
		c.Error(apperrors.NewDatabaseError("search offers", err))
		return
	}
	if offers == nil {
		offers = []*database.Offer{}
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// SuggestTitles serves search-box autocomplete with bare title strings.
func (h *Handler) SuggestTitles(c *gin.Context) {
	titles, err := h.search.SuggestTitles(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(apperrors.NewDatabaseError("suggest titles", err))
		return
	}
	if titles == nil {
		titles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

func (h *Handler) GetOffer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("id", "id must be an integer"))
		return
	}

	offer, getErr := h.offers.GetOffer(c.Request.Context(), id)
	if getErr != nil {
		c.Error(getErr)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var input database.OfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body"))
		return
	}

	offer, err := h.offers.CreateOffer(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) UpdateOffer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("id", "id must be an integer"))
		return
	}

	var input database.OfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", "invalid request body"))
		return
	}

	offer, updateErr := h.offers.UpdateOffer(c.Request.Context(), id, input)
	if updateErr != nil {
		c.Error(updateErr)
		return
	}
	c.JSON(http.StatusOK, offer)
}
