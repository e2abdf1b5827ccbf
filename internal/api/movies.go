package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/castingworks/casting-agency/internal/store"
)

type createMovieRequest struct {
	Title       *string `json:"title"`
	ReleaseDate *string `json:"release_date"`
}

type updateMovieRequest struct {
	Title       *string `json:"title"`
	ReleaseDate *string `json:"release_date"`
}

func (s *Server) listMovies(c *gin.Context) {
	movies, err := s.store.ListMovies(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list movies")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if movies == nil {
		movies = []store.Movie{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "movies": movies})
}

func (s *Server) createMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}
	if req.Title == nil || req.ReleaseDate == nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}

	releaseDate, err := parseReleaseDate(*req.ReleaseDate)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	movie := &store.Movie{Title: *req.Title, ReleaseDate: releaseDate}
	id, err := s.store.CreateMovie(c.Request.Context(), movie)
	if err != nil {
		s.logger.WithError(err).Error("failed to create movie")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "created": id})
}

func (s *Server) updateMovie(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	movie, err := s.store.GetMovie(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load movie")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req updateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Bad request")
		return
	}

	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.ReleaseDate != nil {
		releaseDate, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
			return
		}
		movie.ReleaseDate = releaseDate
	}

	if err := s.store.UpdateMovie(c.Request.Context(), movie); err != nil {
		s.logger.WithError(err).Error("failed to update movie")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "movie": movie})
}

func (s *Server) deleteMovie(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	err = s.store.DeleteMovie(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Resource not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to delete movie")
		respondError(c, http.StatusUnprocessableEntity, "Unprocessable entity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": id})
}

// parseReleaseDate accepts either a full RFC 3339 timestamp or a bare date.
func parseReleaseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
