package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
)

type createLocationRequest struct {
	Code        string `json:"code" binding:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (s *Server) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	location, err := s.locationSvc.Create(c.Request.Context(), locationdomain.CreateLocationRequest{
		Code:        req.Code,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func (s *Server) ListLocations(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		locations, err := s.locationSvc.Find(c.Request.Context(), query)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"locations": locations})
		return
	}

	includeInactive := c.Query("include_inactive") == "true"
	locations, err := s.locationSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (s *Server) GetLocation(c *gin.Context) {
	location, err := s.locationSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

type updateLocationRequest struct {
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

func (s *Server) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	location, err := s.locationSvc.Update(c.Request.Context(), locationdomain.UpdateLocationRequest{
		Code:        c.Param("code"),
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func (s *Server) DeactivateLocation(c *gin.Context) {
	result, err := s.locationSvc.Deactivate(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) SuggestLocationCode(c *gin.Context) {
	code, err := s.locationSvc.SuggestCode(c.Request.Context(), locationdomain.SuggestCodeRequest{
		Type:        c.Query("type"),
		Description: c.Query("description"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (s *Server) LocationStats(c *gin.Context) {
	stats, err := s.locationSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": stats})
}
