package httpdto

import (
	"time"

	"askroom/internal/domain/question"
)

type SubmitQuestionRequest struct {
	Text   string `json:"text" binding:"required"`
	Author string `json:"author"`
}

type SetPinnedRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}

type SetAnsweredRequest struct {
	Answered *bool `json:"answered" binding:"required"`
}

type QuestionResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	Votes      int       `json:"votes"`
	VotedBy    []string  `json:"votedBy"`
	IsPinned   bool      `json:"isPinned"`
	IsAnswered bool      `json:"isAnswered"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListQuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

func FromQuestion(q question.Question) QuestionResponse {
	votedBy := q.VotedBy
	if votedBy == nil {
		votedBy = question.Voters{}
	}
	return QuestionResponse{
		ID:         q.ID.String(),
		Text:       q.Text,
		Author:     q.Author,
		Votes:      q.Votes,
		VotedBy:    votedBy,
		IsPinned:   q.IsPinned,
		IsAnswered: q.IsAnswered,
		CreatedAt:  q.CreatedAt,
	}
}

func FromQuestionSlice(qs []question.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, FromQuestion(q))
	}
	return out
}
