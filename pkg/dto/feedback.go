package dto

import (
	"time"

	"github.com/google/uuid"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

type Feedback struct {
	ID                  uuid.UUID `json:"id"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Feedback            string    `json:"feedback"`
	Sentiment           Sentiment `json:"sentiment"`
	Acknowledged        bool      `json:"acknowledged"`
	CreatedAt           time.Time `json:"created_at"`
	Employee            User      `json:"employee"`
	Manager             *User     `json:"manager,omitempty"`
	Tags                []Tag     `json:"tags"`
	Comments            []Comment `json:"comments"`
}

type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"user"`
}

type CreateFeedbackRequest struct {
	EmployeeID          uuid.UUID `json:"employee_id"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Sentiment           Sentiment `json:"sentiment"`
}

type UpdateFeedbackRequest struct {
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	Sentiment           Sentiment `json:"sentiment"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
