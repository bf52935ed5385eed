// Package llm provides an OpenRouter chat client for contact extraction.
//
// # Extraction Contract
//
// The client sends a show's gathered text to a configured model with a
// strict JSON-only prompt. The response names an email address, a
// confidence band, and the exact quote containing the address — or an
// empty email when nothing qualifying exists. Callers must still verify
// the answer against the source text (internal/extractor does this);
// the client only normalizes shape.
//
// # Entry Points
//
// NewClient: construct client from config.LLM.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.ExtractContact: extraction-specific request and decode.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
package llm
