package api

import "github.com/samcharles93/tokprobe/internal/probe"

type PropsRequest struct {
	Prompt      string `json:"prompt"`
	TargetChars string `json:"target_chars"`
	TopK        int    `json:"top_k,omitempty"`
}

type PropsResponse struct {
	Tokens       []probe.TokenProb `json:"tokens"`
	PromptTokens int               `json:"prompt_tokens"`
	Top          []probe.TokenProb `json:"top,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
