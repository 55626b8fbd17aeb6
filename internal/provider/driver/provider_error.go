package driver

import "fmt"

// ProviderError is returned when a provider call fails on the provider's
// side rather than ours.
//
// The openai driver fills StatusCode and RawResponse from the HTTP reply;
// the gemini driver goes through the genai SDK and sets Message only.
// RawResponse must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}
