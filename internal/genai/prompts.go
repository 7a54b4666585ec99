// Package genai provides integration with LLM APIs (Gemini and Groq).
// This file contains the system prompt for the help-desk responder.
package genai

import (
	"strings"

	"github.com/nbenali/campusbot-go/internal/lang"
)

// basePrompt defines the help-desk assistant persona and answer rules.
const basePrompt = `You are a university help-desk assistant. You answer student
questions about admissions, registration, tuition, schedules, exams, housing,
the library, and other campus services.

Rules:
- Answer ONLY questions related to university services and student life.
  For anything else, politely say you can only help with university matters.
- Ground your answer in the reference information below when it is provided.
  If the reference information does not cover the question, say you are not
  sure and suggest contacting the relevant office instead of guessing.
- Never invent office names, email addresses, phone numbers, dates, or fees.
- Keep answers short and practical. Two to four sentences unless the user
  asks for step-by-step instructions.`

// languageInstruction maps the detected language to an answer-language rule.
var languageInstruction = map[lang.Language]string{
	lang.Arabic:  "Answer in Arabic.",
	lang.French:  "Answer in French.",
	lang.English: "Answer in English.",
}

// SystemPrompt builds the full system prompt for one request. The
// institution context and knowledge context sections are omitted when
// empty so the model never sees empty headers.
func SystemPrompt(language lang.Language, institutionCtx, knowledgeCtx string) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	instr, ok := languageInstruction[language]
	if !ok {
		instr = languageInstruction[lang.English]
	}
	b.WriteString("\n- ")
	b.WriteString(instr)

	if s := strings.TrimSpace(institutionCtx); s != "" {
		b.WriteString("\n\nThe student's selection:\n")
		b.WriteString(s)
	}

	if s := strings.TrimSpace(knowledgeCtx); s != "" {
		b.WriteString("\n\nReference information:\n")
		b.WriteString(s)
	}

	return b.String()
}
