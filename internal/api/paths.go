// Package api implements the Gemini backends: a stateless API-key client
// for generativelanguage.googleapis.com and a cookie-authenticated client
// for the Gemini web app that keeps conversation state server-side.
package api

// GJSON paths into StreamGenerate responses.
const (
	PathBody      = "2"
	PathCandList  = "4"
	PathMetadata  = "1"
	PathErrorCode = "0.5.2.0.1.0"

	// Simple error format: [["wrb.fr",null,null,null,null,[3]],...]
	PathAltErrorCode = "0.5.0"

	// Relative to a candidate.
	PathCandRCID    = "0"
	PathCandText    = "1.0"
	PathCandTextAlt = "22.0"
)

// GJSON paths into generateContent responses.
const (
	PathKeyCandidateText = "candidates.0.content.parts.#.text"
	PathKeyFinishReason  = "candidates.0.finishReason"
	PathKeyBlockReason   = "promptFeedback.blockReason"
	PathKeyErrorMessage  = "error.message"
	PathKeyErrorStatus   = "error.status"
	PathKeyErrorReason   = "error.details.#.reason"
)
