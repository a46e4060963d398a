package service

import (
	"context"
	"strings"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgFeedbackNotFound = "Feedback not found"

type FeedbackService struct {
	feedbacks FeedbackRepository
	accounts  Accounts
	now       clock
}

func NewFeedbackService(feedbacks FeedbackRepository, accounts Accounts) *FeedbackService {
	return &FeedbackService{feedbacks: feedbacks, accounts: accounts, now: systemClock}
}

func (s *FeedbackService) Create(ctx context.Context, who *Identity, req dto.CreateFeedbackRequest) (*model.Feedback, error) {
	if err := who.requireAccount(); err != nil {
		return nil, err
	}
	if req.ProductID == "" || req.Rating == 0 || strings.TrimSpace(req.Comment) == "" {
		return nil, apperr.Validation("Product ID, rating, and comment are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	pid, err := parseID(req.ProductID, "Invalid product ID")
	if err != nil {
		return nil, err
	}

	f := &model.Feedback{
		ProductID: pid,
		UserID:    who.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		return nil, err
	}
	if err := s.joinAuthors(ctx, []*model.Feedback{f}); err != nil {
		return nil, err
	}
	return f, nil
}

// ProductFeedback lists a product's feedback newest first with authors joined.
func (s *FeedbackService) ProductFeedback(ctx context.Context, productIDHex string) ([]*model.Feedback, error) {
	pid, err := parseID(productIDHex, "Invalid product ID")
	if err != nil {
		return nil, err
	}
	out, err := s.feedbacks.FindByProduct(ctx, pid)
	if err != nil {
		return nil, err
	}
	if err := s.joinAuthors(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleLike flips the caller's like and returns the new like count and
// whether the caller now likes the feedback.
func (s *FeedbackService) ToggleLike(ctx context.Context, who *Identity, feedbackIDHex string) (int, bool, error) {
	if err := who.requireAccount(); err != nil {
		return 0, false, err
	}
	f, err := s.find(ctx, feedbackIDHex)
	if err != nil {
		return 0, false, err
	}

	liked := !f.LikedBy(who.ID)
	if liked {
		f, err = s.feedbacks.AddLike(ctx, f.ID, who.ID)
	} else {
		f, err = s.feedbacks.RemoveLike(ctx, f.ID, who.ID)
	}
	if err != nil {
		return 0, false, notFound(err, msgFeedbackNotFound)
	}
	return len(f.Likes), liked, nil
}

func (s *FeedbackService) Reply(ctx context.Context, who *Identity, feedbackIDHex, comment string) (*model.Feedback, error) {
	if err := who.requireAccount(); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperr.Validation("Reply comment is required")
	}
	f, err := s.find(ctx, feedbackIDHex)
	if err != nil {
		return nil, err
	}

	f, err = s.feedbacks.AddReply(ctx, f.ID, model.Reply{
		ID:        primitive.NewObjectID(),
		UserID:    who.ID,
		Comment:   comment,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, notFound(err, msgFeedbackNotFound)
	}
	if err := s.joinAuthors(ctx, []*model.Feedback{f}); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) find(ctx context.Context, idHex string) (*model.Feedback, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(idHex))
	if err != nil {
		return nil, apperr.NotFound(msgFeedbackNotFound)
	}
	f, err := s.feedbacks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgFeedbackNotFound)
	}
	return f, nil
}

// joinAuthors resolves feedback and reply authors in one pass over the
// account collections.
func (s *FeedbackService) joinAuthors(ctx context.Context, feedbacks []*model.Feedback) error {
	var ids []primitive.ObjectID
	for _, f := range feedbacks {
		ids = append(ids, f.UserID)
		for _, r := range f.Replies {
			ids = append(ids, r.UserID)
		}
	}
	authors, err := s.accounts.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, f := range feedbacks {
		f.User = authors[f.UserID]
		for i := range f.Replies {
			f.Replies[i].User = authors[f.Replies[i].UserID]
		}
	}
	return nil
}
