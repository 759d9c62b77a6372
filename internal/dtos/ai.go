package dtos

import "github.com/iyunix/finsarthi/internal/services/coaching"

type CoachRequestDTO struct {
	Messages []coaching.Turn `json:"messages"`
	Language string          `json:"language"`
}

// NewsRequestDTO accepts a single article or a batch.
type NewsRequestDTO struct {
	Article  *coaching.Article  `json:"article,omitempty"`
	Articles []coaching.Article `json:"articles,omitempty"`
	Language string             `json:"language"`
}

type TranslateRequestDTO struct {
	Term     string `json:"term"`
	Language string `json:"language"`
}

type SpeechRequestDTO struct {
	Text string `json:"text"`
}

type TextResponseDTO struct {
	Text string `json:"text"`
}

type SpeechResponseDTO struct {
	Audio  string `json:"audio"`
	Format string `json:"format"`
}
