package domain

import "strings"

// NamePlaceholder is replaced with the reviewer's name when a template is used.
const NamePlaceholder = "{{name}}"

// ResponseTemplate is reusable response text.
type ResponseTemplate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Content     string  `json:"content"`
	Sentiment   string  `json:"sentiment"`
	Category    string  `json:"category"`
	UsageCount  int     `json:"usage_count"`
	SuccessRate float64 `json:"success_rate"`
}

// Render substitutes every placeholder with name.
func (t *ResponseTemplate) Render(name string) string {
	return strings.ReplaceAll(t.Content, NamePlaceholder, name)
}

// TemplatePatch is a shallow partial update of a ResponseTemplate.
type TemplatePatch struct {
	Name        *string
	Content     *string
	Sentiment   *string
	Category    *string
	UsageCount  *int
	SuccessRate *float64
}

// Apply merges the patch into t.
func (p TemplatePatch) Apply(t *ResponseTemplate) {
	setIf(&t.Name, p.Name)
	setIf(&t.Content, p.Content)
	setIf(&t.Sentiment, p.Sentiment)
	setIf(&t.Category, p.Category)
	setIf(&t.UsageCount, p.UsageCount)
	setIf(&t.SuccessRate, p.SuccessRate)
}
