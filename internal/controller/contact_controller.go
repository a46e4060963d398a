package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"

	"github.com/gin-gonic/gin"
)

type ContactAPI interface {
	Send(ctx context.Context, req dto.ContactRequest) error
}

type ContactController struct {
	Service ContactAPI
}

func NewContactController(s ContactAPI) *ContactController {
	return &ContactController{Service: s}
}

func (ctl *ContactController) Send(c *gin.Context) {
	var req dto.ContactRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Service.Send(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully"})
}
