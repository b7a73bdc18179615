package classifier

import (
	"strings"

	"email-classifier/internal/common/validation"
	"email-classifier/internal/models"
)

const promptExample = `{
  "categoria": "Produtivo",
  "resposta_sugerida": "Hello, your request has been received and will be handled shortly. Thank you for reaching out."
}`

// BuildPrompt returns the instruction sent to the model. The email text is
// embedded verbatim; the same input always yields the same prompt.
func BuildPrompt(emailText string) string {
	var parts []string

	parts = append(parts, "You are an AI assistant specialized in analyzing and answering emails. "+
		"Your task is to read the email below, classify it into one of two categories "+
		"(Produtivo or Improdutivo) and then suggest a suitable automatic reply.")

	parts = append(parts, "")
	parts = append(parts, `The category "Produtivo" covers emails containing requests, questions or important `+
		`information about business, projects or tasks that require an action or a follow-up.`)
	parts = append(parts, `The category "Improdutivo" covers emails that require no action or follow-up, such as `+
		`holiday greetings, "ok, thank you" messages or general notifications without an explicit request.`)

	parts = append(parts, "\nEmail to analyze:")
	parts = append(parts, `"`+emailText+`"`)

	parts = append(parts, "\nFollow these instructions strictly when answering:")
	parts = append(parts, "1. Your answer must be a valid JSON object.")
	parts = append(parts, `2. The JSON object must have exactly two keys: "categoria" and "resposta_sugerida".`)
	parts = append(parts, `3. The "categoria" key must contain only one of the two words: "Produtivo" or "Improdutivo".`)
	parts = append(parts, `4. The "resposta_sugerida" key must contain the text of the reply you wrote.`)
	parts = append(parts, "5. Write the reply in the same language as the email.")

	parts = append(parts, "\nExample of the expected JSON format:")
	parts = append(parts, promptExample)

	return strings.Join(parts, "\n")
}

// OutputSchema is the contract the model output must satisfy before it is relayed.
var OutputSchema = validation.MustSchema(map[string]interface{}{
	"type":     "object",
	"required": []string{"categoria", "resposta_sugerida"},
	"properties": map[string]interface{}{
		"categoria": map[string]interface{}{
			"type": "string",
			"enum": []string{string(models.CategoryProductive), string(models.CategoryUnproductive)},
		},
		"resposta_sugerida": map[string]interface{}{
			"type":    "string",
			"pattern": `\S`,
		},
	},
})
