package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayloom/internal/app/handlers/catalog"
	"stayloom/internal/app/queries"
)

type CatalogHandler struct {
	Queries queries.Bus
}

func (h CatalogHandler) List(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[catalog.ListUnitsQuery, []catalog.UnitView](c.Request.Context(), h.Queries, catalog.ListUnitsQuery{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h CatalogHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := catalog.GetUnitQuery{UnitID: c.Param("id")}
	result, err := queries.Ask[catalog.GetUnitQuery, *catalog.UnitView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) Calendar(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	now := time.Now().UTC()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	q := catalog.GetCalendarQuery{UnitID: c.Param("id"), Year: year, Month: time.Month(month)}
	result, err := queries.Ask[catalog.GetCalendarQuery, *catalog.CalendarView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

var _ CatalogHTTP = CatalogHandler{}
