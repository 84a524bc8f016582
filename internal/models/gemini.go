package models

// Gemini web endpoints used by the cookie backend.
const (
	EndpointInit          = "https://gemini.google.com/app"
	EndpointGenerate      = "https://gemini.google.com/_/BardChatUi/data/assistant.lamda.BardFrontendService/StreamGenerate"
	EndpointRotateCookies = "https://accounts.google.com/RotateCookies"
)

// EndpointGenerativeLanguage is the base URL of the API-key backend.
const EndpointGenerativeLanguage = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// Model is a Gemini model together with the header that selects it on the
// web backend.
type Model struct {
	Name   string
	Header map[string]string
}

var (
	// ModelUnspecified leaves model selection to the server.
	ModelUnspecified = Model{Name: "unspecified"}

	Model25Flash = Model{
		Name: "gemini-2.5-flash",
		Header: map[string]string{
			"x-goog-ext-525001261-jspb": `[1,null,null,null,"71c2d248d3b102ff",null,null,0,[4],null,null,2]`,
		},
	}

	Model30Pro = Model{
		Name: "gemini-3.0-pro",
		Header: map[string]string{
			"x-goog-ext-525001261-jspb": `[1,null,null,null,"e6fa609c3fa255c0",null,null,0,[4],null,null,2]`,
		},
	}
)

// AllModels lists the selectable web models.
func AllModels() []Model {
	return []Model{Model25Flash, Model30Pro}
}

// ModelFromName returns the web model with the given name, or
// ModelUnspecified.
func ModelFromName(name string) Model {
	for _, m := range AllModels() {
		if m.Name == name {
			return m
		}
	}
	return ModelUnspecified
}

// DefaultHeaders returns the browser-like headers sent to gemini.google.com.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":             "application/x-www-form-urlencoded;charset=utf-8",
		"Host":                     "gemini.google.com",
		"Origin":                   "https://gemini.google.com",
		"Referer":                  "https://gemini.google.com/",
		"User-Agent":               "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
		"Accept-Language":          "en-US,en;q=0.9",
		"X-Same-Domain":            "1",
		"x-goog-ext-73010989-jspb": "[0]",
	}
}

// RotateCookiesHeaders returns headers for the cookie rotation endpoint.
func RotateCookiesHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}
