package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

type BookHandler struct {
	Svc *application.BookService
	// Location reads date-only request fields.
	Location *time.Location
	Logger   logrus.FieldLogger
}

func NewBookHandler(svc *application.BookService, loc *time.Location, logger logrus.FieldLogger) *BookHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookHandler{Svc: svc, Location: loc, Logger: logger}
}

type createBookRequest struct {
	Title        string  `json:"title" binding:"required,notblank,max=300"`
	Author       string  `json:"author" binding:"required,notblank,max=200"`
	Genre        *string `json:"genre" binding:"omitempty,max=100"`
	Pages        *int    `json:"pages" binding:"omitempty,pagecount"`
	Status       string  `json:"status" binding:"omitempty,bookstatus"`
	CurrentPage  *int    `json:"current_page" binding:"omitempty,min=0,max=100000"`
	Rating       *int    `json:"rating" binding:"omitempty,rating"`
	DateStarted  *string `json:"date_started"`
	DateFinished *string `json:"date_finished"`
}

type updateBookRequest struct {
	Title        *string `json:"title" binding:"omitempty,notblank,max=300"`
	Author       *string `json:"author" binding:"omitempty,notblank,max=200"`
	Genre        *string `json:"genre" binding:"omitempty,max=100"`
	Pages        *int    `json:"pages" binding:"omitempty,pagecount"`
	Status       *string `json:"status" binding:"omitempty,bookstatus"`
	CurrentPage  *int    `json:"current_page" binding:"omitempty,min=0,max=100000"`
	Rating       *int    `json:"rating" binding:"omitempty,rating"`
	DateStarted  *string `json:"date_started"`
	DateFinished *string `json:"date_finished"`
}

type progressRequest struct {
	CurrentPage *int `json:"current_page" binding:"required,min=0,max=100000"`
}

type finishRequest struct {
	Rating int `json:"rating" binding:"required,rating"`
}

func (h *BookHandler) dates(started, finished *string) (*time.Time, *time.Time, error) {
	s, err := parseDate("date_started", started, h.Location)
	if err != nil {
		return nil, nil, err
	}
	f, err := parseDate("date_finished", finished, h.Location)
	if err != nil {
		return nil, nil, err
	}
	return s, f, nil
}

// List GET /api/books?status=
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.Svc.List(c.Request.Context(), currentUser(c), entity.BookStatus(c.Query("status")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBooks(books), "books", map[string]any{"count": len(books)})
}

// Search GET /api/books/search?q=
func (h *BookHandler) Search(c *gin.Context) {
	books, err := h.Svc.SearchBooks(c.Request.Context(), currentUser(c), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBooks(books), "search results", map[string]any{"count": len(books)})
}

func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if !bindJSON(c, &req) {
		return
	}
	started, finished, err := h.dates(req.DateStarted, req.DateFinished)
	if err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), currentUser(c), application.CreateBookInput{
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		Pages:        req.Pages,
		Status:       entity.BookStatus(req.Status),
		CurrentPage:  req.CurrentPage,
		Rating:       req.Rating,
		DateStarted:  started,
		DateFinished: finished,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toBook(*b), "book created", nil)
}

func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBook(*b), "book", nil)
}

// Update PUT /api/books/:id applies a partial update; absent fields are unchanged.
func (h *BookHandler) Update(c *gin.Context) {
	var req updateBookRequest
	if !bindJSON(c, &req) {
		return
	}
	started, finished, err := h.dates(req.DateStarted, req.DateFinished)
	if err != nil {
		response.FromError(c, err)
		return
	}
	in := application.UpdateBookInput{
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		Pages:        req.Pages,
		CurrentPage:  req.CurrentPage,
		Rating:       req.Rating,
		DateStarted:  started,
		DateFinished: finished,
	}
	if req.Status != nil {
		st := entity.BookStatus(*req.Status)
		in.Status = &st
	}
	b, err := h.Svc.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBook(*b), "book updated", nil)
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "book deleted", nil)
}

func (h *BookHandler) Start(c *gin.Context) {
	b, err := h.Svc.Start(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBook(*b), "reading started", nil)
}

func (h *BookHandler) Progress(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Progress(c.Request.Context(), currentUser(c), c.Param("id"), *req.CurrentPage)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBook(*b), "progress saved", nil)
}

func (h *BookHandler) Finish(c *gin.Context) {
	var req finishRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Finish(c.Request.Context(), currentUser(c), c.Param("id"), req.Rating)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toBook(*b), "book finished", nil)
}
