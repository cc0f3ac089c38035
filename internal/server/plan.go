package server

import (
	"net/http"
	"strings"

	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListPlans(c *gin.Context) {
	resp, err := s.planSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createPlanRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.planSvc.Create(c.Request.Context(), plandomain.CreatePlanRequest{
		Name:  strings.TrimSpace(req.Name),
		Price: req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePlanRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

func (s *Server) UpdatePlan(c *gin.Context) {
	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.planSvc.Update(c.Request.Context(), id, plandomain.UpdatePlanRequest{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upgradePlanRequest struct {
	NewPlanID string `json:"new_plan_id"`
}

func (s *Server) UpgradePlan(c *gin.Context) {
	var req upgradePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.planSvc.Upgrade(c.Request.Context(), plandomain.UpgradePlanRequest{
		NewPlanID: strings.TrimSpace(req.NewPlanID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
