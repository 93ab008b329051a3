package generator

import (
	"fmt"
	"strings"
	"time"
)

// Tone is the writing register requested for the piece.
type Tone string

const (
	ToneCasual         Tone = "Casual"
	ToneConversational Tone = "Conversational"
	ToneProfessional   Tone = "Professional"
	ToneTechnical      Tone = "Technical"
	ToneFormal         Tone = "Formal"
)

// Audience is the reader level the piece targets.
type Audience string

const (
	AudienceBeginner     Audience = "Beginner"
	AudienceIntermediate Audience = "Intermediate"
	AudienceAdvanced     Audience = "Advanced"
	AudienceExpert       Audience = "Expert"
)

// ContentType names the kind of piece; its value doubles as the writer's specialty in the prompt.
type ContentType string

const (
	ContentBlogPost           ContentType = "Blog Post"
	ContentArticle            ContentType = "Article"
	ContentProductDescription ContentType = "Product Description"
	ContentSocialMediaPost    ContentType = "Social Media Post"
	ContentNewsletter         ContentType = "Newsletter"
)

func AllTones() []Tone {
	return []Tone{ToneCasual, ToneConversational, ToneProfessional, ToneTechnical, ToneFormal}
}

func AllAudiences() []Audience {
	return []Audience{AudienceBeginner, AudienceIntermediate, AudienceAdvanced, AudienceExpert}
}

func AllContentTypes() []ContentType {
	return []ContentType{ContentBlogPost, ContentArticle, ContentProductDescription, ContentSocialMediaPost, ContentNewsletter}
}

// ParseTone matches s against the tone labels, ignoring case.
func ParseTone(s string) (Tone, error) {
	for _, t := range AllTones() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

func ParseAudience(s string) (Audience, error) {
	for _, a := range AllAudiences() {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown audience %q", s)
}

// ParseContentType accepts the label ("Blog Post") or its compact form ("blogpost", "blog-post").
func ParseContentType(s string) (ContentType, error) {
	norm := compactLabel(s)
	for _, c := range AllContentTypes() {
		if norm == compactLabel(string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

func compactLabel(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(s))
}

// WordRange bounds the target word count a request may ask for.
type WordRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

func DefaultWordRange() WordRange {
	return WordRange{Min: 300, Max: 2000, Step: 50, Default: 500}
}

// Clamp maps 0 to the default and pulls anything else into [Min, Max].
func (r WordRange) Clamp(n int) int {
	if n == 0 {
		return r.Default
	}
	if n < r.Min {
		return r.Min
	}
	if n > r.Max {
		return r.Max
	}
	return n
}

// ContentRequest holds the user's choices for one generation.
// Keywords is passed to the model as written; it is not split.
type ContentRequest struct {
	Topic       string      `json:"topic"`
	Keywords    string      `json:"keywords"`
	Description string      `json:"description,omitempty"`
	WordCount   int         `json:"word_count"`
	Tone        Tone        `json:"tone"`
	Audience    Audience    `json:"audience"`
	ContentType ContentType `json:"content_type"`
}

// GenerationResult is a completed generation. It is never modified after creation.
type GenerationResult struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Title       string    `json:"title,omitempty"`
	Digest      string    `json:"digest,omitempty"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DisplayDate formats GeneratedAt for history listings.
func (r GenerationResult) DisplayDate() string {
	return r.GeneratedAt.Format("2006-01-02 15:04")
}
