// internal/models/classification.go
package models

// Category is the label attached to a classified email.
type Category string

const (
	CategoryProductive   Category = "Produtivo"
	CategoryUnproductive Category = "Improdutivo"
	// CategoryError marks the fallback result; the model never produces it.
	CategoryError Category = "Erro"
)

// FallbackReply is returned as the suggested reply whenever classification fails.
const FallbackReply = "Could not process the email. Please try again."

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryProductive, CategoryUnproductive, CategoryError:
		return true
	}
	return false
}

// ClassificationRequest is the body of POST /process.
type ClassificationRequest struct {
	EmailText string `json:"email_text"`
}

// Classification is the body returned for every well-formed request.
type Classification struct {
	Category       Category `json:"categoria"`
	SuggestedReply string   `json:"resposta_sugerida"`
}

// FallbackClassification is the fixed payload used when the model call fails.
func FallbackClassification() Classification {
	return Classification{
		Category:       CategoryError,
		SuggestedReply: FallbackReply,
	}
}
