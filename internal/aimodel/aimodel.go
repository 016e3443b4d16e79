// Package aimodel lists the translation models the backend accepts in the
// ai_model field.
package aimodel

import "strings"

// Model is one selectable backend model.
type Model struct {
	Key         string // value sent as ai_model
	Name        string
	Upstream    string // model id the backend forwards to
	Description string
}

// Default is the model selected when none is configured.
const Default = "gpt-4o"

var models = []Model{
	{Key: "gpt-4o", Name: "GPT-4O", Upstream: "gpt-4o", Description: "OpenAI GPT-4O (most capable)"},
	{Key: "gpt-3.5", Name: "GPT-3.5 Turbo", Upstream: "gpt-3.5-turbo", Description: "OpenAI GPT-3.5 (fast)"},
	{Key: "kimi", Name: "Kimi", Upstream: "moonshot-v1-8k", Description: "Moonshot Kimi (long context)"},
	{Key: "qwen", Name: "Qwen", Upstream: "qwen-max", Description: "Alibaba Qwen (Chinese-optimized)"},
	{Key: "zhipu", Name: "GLM-4", Upstream: "glm-4", Description: "Zhipu GLM-4 (Chinese understanding)"},
	{Key: "deepseek", Name: "DeepSeek", Upstream: "deepseek-chat", Description: "DeepSeek (cost-effective)"},
}

// All returns the catalogue in display order.
func All() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// Lookup finds a model by key, case-insensitively.
func Lookup(key string) (Model, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range models {
		if m.Key == key {
			return m, true
		}
	}
	return Model{}, false
}

// Keys returns the accepted ai_model values.
func Keys() []string {
	keys := make([]string, len(models))
	for i, m := range models {
		keys[i] = m.Key
	}
	return keys
}
