package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/castingworks/casting-agency/internal/auth"
	"github.com/castingworks/casting-agency/internal/store"
)

type createActorRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

type updateActorRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

func (s *Server) listActors(c *gin.Context) {
	if claims, ok := auth.ClaimsFromContext(c.Request.Context()); ok {
		s.logger.WithField("subject", claims.Subject).Debug("listing actors")
	}

	actors, err := s.store.ListActors(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list actors")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if actors == nil {
		actors = []store.Actor{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "actors": actors})
}

func (s *Server) createActor(c *gin.Context) {
	var req createActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}
	if req.Name == nil || req.Age == nil || req.Gender == nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}

	actor := &store.Actor{Name: *req.Name, Age: *req.Age, Gender: *req.Gender}
	id, err := s.store.CreateActor(c.Request.Context(), actor)
	if err != nil {
		s.logger.WithError(err).Error("failed to create actor")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "created": id})
}

func (s *Server) updateActor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	actor, err := s.store.GetActor(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load actor")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req updateActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}

	if req.Name != nil {
		actor.Name = *req.Name
	}
	if req.Age != nil {
		actor.Age = *req.Age
	}
	if req.Gender != nil {
		actor.Gender = *req.Gender
	}

	if err := s.store.UpdateActor(c.Request.Context(), actor); err != nil {
		s.logger.WithError(err).Error("failed to update actor")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "actor": actor})
}

func (s *Server) deleteActor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	err = s.store.DeleteActor(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to delete actor")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": id})
}
