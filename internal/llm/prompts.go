package llm

import _ "embed"

var (
	//go:embed prompts/resume.txt
	resumePrompt string
	//go:embed prompts/cover_letter.txt
	coverLetterPrompt string
	//go:embed prompts/screening_answer.txt
	screeningAnswerPrompt string
)

// System personas sent with each request kind.
const (
	ResumePersona          = "You are an expert resume writer."
	CoverLetterPersona     = "You are a professional career coach."
	ScreeningAnswerPersona = "You are a professional job seeker answering an application screening question."
)

// PromptTemplate returns the instruction template for a purpose and whether it is known.
func PromptTemplate(purpose string) (string, bool) {
	switch purpose {
	case PurposeResume:
		return resumePrompt, true
	case PurposeCoverLetter:
		return coverLetterPrompt, true
	case PurposeScreeningAnswer:
		return screeningAnswerPrompt, true
	default:
		return "", false
	}
}
