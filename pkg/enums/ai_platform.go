package enums

import "fmt"

// AIPlatform names an answer-engine surface tracked for brand mentions.
type AIPlatform string

const (
	AIPlatformChatGPT    AIPlatform = "chatgpt"
	AIPlatformPerplexity AIPlatform = "perplexity"
	AIPlatformGemini     AIPlatform = "gemini"
	AIPlatformCopilot    AIPlatform = "copilot"
)

var validAIPlatforms = []AIPlatform{
	AIPlatformChatGPT,
	AIPlatformPerplexity,
	AIPlatformGemini,
	AIPlatformCopilot,
}

// String implements fmt.Stringer.
func (p AIPlatform) String() string {
	return string(p)
}

// IsValid reports whether the value matches a tracked platform.
func (p AIPlatform) IsValid() bool {
	for _, candidate := range validAIPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseAIPlatform converts raw input into AIPlatform.
func ParseAIPlatform(value string) (AIPlatform, error) {
	for _, candidate := range validAIPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ai platform %q", value)
}
