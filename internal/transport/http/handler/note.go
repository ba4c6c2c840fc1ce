package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/avsoftware/notes-backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	noteUsecase *usecase.NoteUsecase
	logger      *slog.Logger
}

func NewNoteHandler(noteUsecase *usecase.NoteUsecase, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{noteUsecase: noteUsecase, logger: logger.With("component", "note_handler")}
}

type createNoteRequest struct {
	Title   string `json:"title"   binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
	Color   int64  `json:"color"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     int64     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		CreatedAt: n.CreatedAt,
	}
}

// POST /notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.noteUsecase.Create(c.Request.Context(), usecase.CreateNoteInput{
		OwnerID: c.GetString("userID"),
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "create note", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toNoteResponse(note))
}

// GET /notes
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.noteUsecase.ListByOwner(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list notes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	noteID := c.Param("id")

	err := h.noteUsecase.Delete(c.Request.Context(), noteID, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNoteNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "delete note", "note_id", noteID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
