package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Persona is the system instruction given to the bot.
type Persona struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

// DefaultPersona is the mangrove and coastal ecosystem expert.
func DefaultPersona() Persona {
	return Persona{
		Name:        "mangrove-expert",
		Description: "Expert on mangroves and coastal ecosystems",
		SystemPrompt: "You are an expert on mangroves and coastal ecosystems. " +
			"Answer questions clearly and concisely, focusing on this topic. " +
			"Be friendly and engaging. Your knowledge is specialized in this area.",
	}
}

// LoadPersona returns the persona from persona.json, or the default when
// the file does not exist.
func LoadPersona() (Persona, error) {
	path, err := GetPersonaPath()
	if err != nil {
		return DefaultPersona(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPersona(), nil
		}
		return DefaultPersona(), fmt.Errorf("failed to read persona: %w", err)
	}

	var p Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return DefaultPersona(), fmt.Errorf("failed to parse persona: %w", err)
	}
	if err := ValidatePersona(p); err != nil {
		return DefaultPersona(), err
	}
	return p, nil
}

// ValidatePersona checks the persona fields.
func ValidatePersona(p Persona) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("persona name cannot be empty")
	}
	if strings.ContainsAny(p.Name, " \t\n") {
		return fmt.Errorf("persona name cannot contain whitespace")
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return fmt.Errorf("persona %s has an empty system prompt", p.Name)
	}
	return nil
}

// FormatSystemPrompt inlines a system prompt into a user message, for
// backends without a separate instruction field.
func FormatSystemPrompt(systemPrompt, userMessage string) string {
	if systemPrompt == "" {
		return userMessage
	}
	return fmt.Sprintf("[System Instructions]\n%s\n\n[User Message]\n%s", systemPrompt, userMessage)
}
