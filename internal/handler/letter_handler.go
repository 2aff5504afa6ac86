package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadayed22/University-Project/internal/service"
	appErrors "github.com/Ahmadayed22/University-Project/pkg/errors"
	"github.com/Ahmadayed22/University-Project/pkg/response"
)

// LetterHandler serves rendered letter PDFs through signed links.
type LetterHandler struct {
	letters *service.LetterService
}

// NewLetterHandler constructs LetterHandler.
func NewLetterHandler(letters *service.LetterService) *LetterHandler {
	return &LetterHandler{letters: letters}
}

// Download godoc
// @Summary Download a rendered letter PDF via a signed link
// @Tags Letters
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /letters/download [get]
func (h *LetterHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing token"))
		return
	}

	file, err := h.letters.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="letter.pdf"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		// Headers are gone by now, nothing left to do but log through gin.
		_ = c.Error(err)
	}
}
