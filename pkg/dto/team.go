package dto

import "github.com/google/uuid"

type Team struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Manager User      `json:"manager"`
	Members []User    `json:"members"`
}

// TeamPublic is the reduced shape returned by the unauthenticated team
// listing used during registration.
type TeamPublic struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SentimentStat struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}
