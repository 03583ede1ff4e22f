// Package prompt renders the deterministic model prompts. User-supplied text
// is sanitized before insertion so a question cannot smuggle markup into the
// instructional framing.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQuestionLength caps user-supplied question text, counted in runes.
const MaxQuestionLength = 1000

// Sanitize trims user input, strips angle brackets, and caps the length. The
// cap cuts on a rune boundary so truncation never produces invalid UTF-8.
func Sanitize(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.ReplaceAll(cleaned, "<", "")
	cleaned = strings.ReplaceAll(cleaned, ">", "")
	if utf8.RuneCountInString(cleaned) > MaxQuestionLength {
		cleaned = string([]rune(cleaned)[:MaxQuestionLength])
	}
	return cleaned
}

// Answer renders the mentor prompt with the gathered context and question
// inserted verbatim.
func Answer(question, context string) string {
	return fmt.Sprintf(`You are a knowledgeable and compassionate Bible scholar and mentor.
Using the following context and your biblical knowledge, provide a thoughtful,
encouraging, and scripturally-based response to the question.

Context:
%s

Question: %s

Please provide a response that:
1. Addresses the question directly
2. References relevant scripture
3. Offers practical application
4. Maintains a supportive and encouraging tone

Response:`, context, question)
}

// Study renders the SOAP study prompt for a passage. The model must answer
// with a JSON object carrying exactly the five study fields.
func Study(passage string) string {
	return fmt.Sprintf(`Generate a SOAP Bible study for the passage: %s

Please provide:
1. Scripture: The full text of the passage
2. Observation: Key insights and meaning of the passage
3. Application: How to apply this passage to daily life
4. Prayer: A prayer related to the passage's teachings

Format as JSON with these fields: scripture, reference, observation, application, prayer.
Keep each section concise but meaningful.`, passage)
}
