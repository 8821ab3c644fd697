package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
)

type findOrCreateConsignerRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DefaultSplit *int   `json:"default_split_percentage"`
}

func (s *Server) FindOrCreateConsigner(c *gin.Context) {
	var req findOrCreateConsignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	consigner, err := s.consignerSvc.FindOrCreate(c.Request.Context(), consignerdomain.FindOrCreateRequest{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		DefaultSplit: req.DefaultSplit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, consigner)
}

func (s *Server) ListConsigners(c *gin.Context) {
	consigners, err := s.consignerSvc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consigners": consigners})
}

func (s *Server) GetConsignerByID(c *gin.Context) {
	consigner, err := s.consignerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, consigner)
}

type updateConsignerRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	DefaultSplit *int    `json:"default_split_percentage"`
}

func (s *Server) UpdateConsigner(c *gin.Context) {
	var req updateConsignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	consigner, err := s.consignerSvc.Update(c.Request.Context(), consignerdomain.UpdateConsignerRequest{
		ID:           c.Param("id"),
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		DefaultSplit: req.DefaultSplit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, consigner)
}

func (s *Server) GetConsignerStatistics(c *gin.Context) {
	stats, err := s.consignerSvc.Statistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
