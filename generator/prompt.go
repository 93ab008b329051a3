package generator

import (
	"fmt"
	"strings"
)

const writingGuidelines = `## Writing Guidelines:
1. **Headings & Structure**
- Use a **clear and logical heading hierarchy** (# for H1, ## for H2, ### for H3).
- Each major section (H2) must have **at least two well-developed subsections** (H3).
- Ensure all headings are **descriptive and informative** to improve readability and SEO.

2. **Engagement & Readability**
- Open with a **strong, attention-grabbing introduction** (2-3 paragraphs).
- Maintain a **smooth narrative flow** with natural transitions between sections.
- Write in **short, digestible paragraphs** that enhance readability.
- Use **rich, vivid language** while keeping the content professional and informative.

3. **SEO Optimization**
- Naturally **incorporate target keywords** throughout the content without keyword stuffing.
- Use **semantic variations** and related terms to enhance search relevance.
- Structure content for **featured snippets** (concise, direct answers in key sections).

4. **Content Structure:**
1. **Title (H1):** A compelling, SEO-friendly title.
2. **Introduction:** Engaging overview (2-3 paragraphs).
3. **Main Sections (H2):**
    - Each section should have at least **two** well-developed subsections (H3).
    - Each subsection should contain **2-3 in-depth paragraphs** with smooth transitions.
4. **Conclusion:** A strong closing statement (1-2 paragraphs), summarizing key takeaways.

## Formatting & Style Rules:
- **Use proper Markdown syntax** for headings.
- **Do NOT use bullet points** (except within this guideline).
- **Maintain consistent paragraph spacing** for readability.
- **Avoid fluff**: every sentence should add value.
- **No external/internal link suggestions, meta descriptions, or author bios.**

Your goal is to deliver **polished, high-quality content** that is both engaging for readers and optimized for search engines.`

// AdditionalContextHeader introduces the free-text description, when there is one.
const AdditionalContextHeader = "Additional Context:"

// BuildPrompt renders req into the instruction sent to the model.
// The output depends only on req.
func BuildPrompt(req ContentRequest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are an expert %s writer specializing in SEO-driven content. ", req.ContentType))
	sb.WriteString("Your task is to craft a compelling, well-structured, and highly engaging piece that aligns with the provided specifications.\n\n")

	sb.WriteString("## Content Specifications:\n")
	sb.WriteString(fmt.Sprintf("- **Topic:** %s\n", req.Topic))
	sb.WriteString(fmt.Sprintf("- **Primary and Secondary Keywords:** %s\n", req.Keywords))
	sb.WriteString(fmt.Sprintf("- **Target Word Count:** %d\n", req.WordCount))
	sb.WriteString(fmt.Sprintf("- **Tone & Style:** %s\n", req.Tone))
	sb.WriteString(fmt.Sprintf("- **Target Audience:** %s\n\n", req.Audience))

	sb.WriteString(writingGuidelines)

	if req.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(AdditionalContextHeader)
		sb.WriteString("\n")
		sb.WriteString(req.Description)
	}
	return sb.String()
}
