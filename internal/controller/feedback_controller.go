package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackAPI interface {
	Create(ctx context.Context, who *service.Identity, req dto.CreateFeedbackRequest) (*model.Feedback, error)
	ProductFeedback(ctx context.Context, productIDHex string) ([]*model.Feedback, error)
	ToggleLike(ctx context.Context, who *service.Identity, feedbackIDHex string) (int, bool, error)
	Reply(ctx context.Context, who *service.Identity, feedbackIDHex, comment string) (*model.Feedback, error)
}

type FeedbackController struct {
	Service FeedbackAPI
}

func NewFeedbackController(s FeedbackAPI) *FeedbackController {
	return &FeedbackController{Service: s}
}

func (ctl *FeedbackController) Create(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	f, err := ctl.Service.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Feedback submitted successfully", "feedback": f})
}

// GET /api/feedback/product/:productId
func (ctl *FeedbackController) ForProduct(c *gin.Context) {
	list, err := ctl.Service.ProductFeedback(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "feedbacks": list})
}

// POST /api/feedback/like/:feedbackId
func (ctl *FeedbackController) Like(c *gin.Context) {
	likes, liked, err := ctl.Service.ToggleLike(c.Request.Context(), identity(c), c.Param("feedbackId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "likes": likes, "isLiked": liked})
}

// POST /api/feedback/reply/:feedbackId
func (ctl *FeedbackController) Reply(c *gin.Context) {
	var req dto.ReplyRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	f, err := ctl.Service.Reply(c.Request.Context(), identity(c), c.Param("feedbackId"), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reply added successfully", "feedback": f})
}
