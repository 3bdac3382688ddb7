// Package prompts holds the master prompt sent to the model.
package prompts

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Placeholder is replaced with the compact JSON of the request.
const Placeholder = "{{empire_description_json}}"

//go:embed master_prompt.txt
var masterPrompt string

// ErrMissingPlaceholder is returned for a prompt without Placeholder.
var ErrMissingPlaceholder = errors.New("master prompt has no " + Placeholder + " placeholder")

// Default returns the embedded master prompt.
func Default() string {
	return masterPrompt
}

// Load reads the prompt at path. An empty path, or a path that does not
// exist when fallback is set, yields the embedded prompt.
func Load(path string, fallback bool) (string, error) {
	if path == "" {
		return masterPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if fallback && errors.Is(err, fs.ErrNotExist) {
			return masterPrompt, nil
		}
		return "", fmt.Errorf("failed to read master prompt: %w", err)
	}
	prompt := string(data)
	if !strings.Contains(prompt, Placeholder) {
		return "", fmt.Errorf("%s: %w", path, ErrMissingPlaceholder)
	}
	return prompt, nil
}

// Render substitutes the compact JSON encoding of description for every
// occurrence of Placeholder in template.
func Render(template string, description any) (string, error) {
	data, err := json.Marshal(description)
	if err != nil {
		return "", fmt.Errorf("failed to encode description: %w", err)
	}
	return strings.ReplaceAll(template, Placeholder, string(data)), nil
}
