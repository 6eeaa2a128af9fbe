package dto

// AI assistance payloads. The AI backend is an opaque collaborator that
// returns plain text.

type SuggestFeedbackRequest struct {
	Prompt string `json:"prompt"`
}

type RephraseRequest struct {
	Text string `json:"text"`
}

type GenerateFeedbackRequest struct {
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
}
