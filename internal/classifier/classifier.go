package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "email-classifier/internal/common/errors"
	"email-classifier/internal/common/logger"
	"email-classifier/internal/common/metrics"
	"email-classifier/internal/common/observability"
	"email-classifier/internal/common/validation"
	"email-classifier/internal/models"
)

// ErrEmptyResponse is returned by a Model when the provider answered without content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Model is a generative-language provider constrained to answer in JSON.
type Model interface {
	// GenerateJSON sends prompt and returns the raw JSON text of the answer.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Outcome distinguishes a parsed model answer from the fixed fallback.
type Outcome int

const (
	OutcomeParsed Outcome = iota + 1
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is what Classify returns. Classification is always populated;
// Cause is set only for OutcomeFallback.
type Result struct {
	Classification models.Classification
	Outcome        Outcome
	Cause          *apperrors.StandardError
}

func (r Result) Parsed() bool { return r.Outcome == OutcomeParsed }

type Options struct {
	Model         Model
	Logger        logger.Logger
	Observability *observability.Observability
	// Schema overrides OutputSchema; tests only.
	Schema *validation.Schema
}

// Classifier turns raw email text into a classification by delegating to a Model.
// It holds no per-request state and is safe for concurrent use.
type Classifier struct {
	model  Model
	logger logger.Logger
	obs    *observability.Observability
	schema *validation.Schema
}

func New(opts Options) (*Classifier, error) {
	if opts.Model == nil {
		return nil, errors.New("classifier: model is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Schema == nil {
		opts.Schema = OutputSchema
	}

	return &Classifier{
		model:  opts.Model,
		logger: opts.Logger.WithFields(map[string]interface{}{"provider": opts.Model.Name()}),
		obs:    opts.Observability,
		schema: opts.Schema,
	}, nil
}

// Classify never fails: any upstream problem yields the fallback classification.
func (c *Classifier) Classify(ctx context.Context, emailText string) Result {
	provider := c.model.Name()
	log := logger.FromContext(ctx, c.logger)
	start := time.Now()

	spanCtx, end := c.obs.StartSpan(ctx, "classifier.generate", attribute.String("genai.provider", provider))
	raw, err := c.model.GenerateJSON(spanCtx, BuildPrompt(emailText))

	var classification models.Classification
	if err == nil {
		classification, err = c.parse(raw)
	}
	end(err)

	elapsed := time.Since(start)
	metrics.ClassificationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	if err != nil {
		cause := classifyError(ctx, provider, err)

		log.Error("classification failed, returning fallback", map[string]interface{}{
			"errorCode":     string(cause.Code),
			"errorCategory": apperrors.GetErrorCategory(cause.Code),
			"error":         cause.Error(),
			"emailLength":   len(emailText),
			"durationMs":    elapsed.Milliseconds(),
		})

		metrics.ClassificationFailures.WithLabelValues(provider, string(cause.Code)).Inc()
		metrics.ClassificationsTotal.WithLabelValues(provider, string(models.CategoryError)).Inc()
		c.obs.RecordClassification(ctx, OutcomeFallback.String(), elapsed)

		return Result{
			Classification: models.FallbackClassification(),
			Outcome:        OutcomeFallback,
			Cause:          cause,
		}
	}

	log.Info("email classified", map[string]interface{}{
		"categoria":   string(classification.Category),
		"emailLength": len(emailText),
		"durationMs":  elapsed.Milliseconds(),
	})

	metrics.ClassificationsTotal.WithLabelValues(provider, string(classification.Category)).Inc()
	c.obs.RecordClassification(ctx, OutcomeParsed.String(), elapsed)

	return Result{
		Classification: classification,
		Outcome:        OutcomeParsed,
	}
}

func (c *Classifier) parse(raw string) (models.Classification, error) {
	doc := []byte(stripCodeFence(raw))
	if len(doc) == 0 {
		return models.Classification{}, ErrEmptyResponse
	}

	var decoded interface{}
	if err := json.Unmarshal(doc, &decoded); err != nil {
		return models.Classification{}, apperrors.NewLLMInvalidJSONError(err)
	}

	result, err := c.schema.Validate(decoded)
	if err != nil {
		return models.Classification{}, apperrors.NewLLMSchemaMismatchError(err.Error())
	}
	if !result.Valid {
		return models.Classification{}, apperrors.NewLLMSchemaMismatchError(result.String())
	}

	var out models.Classification
	if err := json.Unmarshal(doc, &out); err != nil {
		return models.Classification{}, apperrors.NewLLMInvalidJSONError(err)
	}
	// Options.Schema may be looser than OutputSchema; "Erro" is reserved for the fallback.
	if !out.Category.Valid() || out.Category == models.CategoryError {
		return models.Classification{}, apperrors.NewLLMSchemaMismatchError(
			fmt.Sprintf("categoria %q is not a model category", out.Category))
	}
	return out, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func classifyError(ctx context.Context, provider string, err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	if errors.Is(err, ErrEmptyResponse) {
		return apperrors.NewLLMEmptyResponseError(provider)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewLLMTimeoutError(provider, err)
	}

	return apperrors.NewLLMRequestFailedError(provider, err)
}
