package dtos

import "github.com/iyunix/finsarthi/internal/services/advice"

type ValidateStepRequestDTO struct {
	Step  string        `json:"step"`
	Value advice.Answer `json:"value"`
}

type ValidateStepResponseDTO struct {
	Valid bool   `json:"valid"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

type StepsResponseDTO struct {
	Steps []advice.Step `json:"steps"`
}
