package concepts

import (
	"context"
	"fmt"
	"strings"

	"dynamocards-backend/internal/ai"
	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/internal/transcript"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Generator is the opaque text-in, text-out model call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const extractionPrompt = `
Find and define key concepts or terms found in the text:
%s

Respond ONLY in the following format as a JSON object without any backticks separating each concept with a comma:
{"concept": "definition", "concept": "definition", ...}
`

// BuildPrompt renders the extraction prompt for one group's text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(extractionPrompt, text)
}

// GroupText concatenates the chunk texts of a group without separators.
func GroupText(group []transcript.Chunk) string {
	var sb strings.Builder
	for _, c := range group {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// GroupUsage is the character accounting of one model call.
type GroupUsage struct {
	Chunks      int     `json:"chunks" bson:"chunks"`
	InputChars  int     `json:"input_chars" bson:"input_chars"`
	InputCost   float64 `json:"input_cost" bson:"input_cost"`
	OutputChars int     `json:"output_chars" bson:"output_chars"`
	OutputCost  float64 `json:"output_cost" bson:"output_cost"`
}

func (g GroupUsage) Total() float64 { return g.InputCost + g.OutputCost }

// Usage sums the accounting of a whole extraction.
type Usage struct {
	Groups      []GroupUsage `json:"groups" bson:"groups"`
	InputChars  int          `json:"input_chars" bson:"input_chars"`
	OutputChars int          `json:"output_chars" bson:"output_chars"`
	TotalCost   float64      `json:"total_cost" bson:"total_cost"`
}

func (u *Usage) add(g GroupUsage) {
	u.Groups = append(u.Groups, g)
	u.InputChars += g.InputChars
	u.OutputChars += g.OutputChars
	u.TotalCost += g.Total()
}

// Result is the stitched output of an extraction.
type Result struct {
	Plan     GroupPlan `json:"plan"`
	Concepts []Record  `json:"key_concepts"`
	Usage    Usage     `json:"usage"`
}

// Extractor runs the per-group extraction calls sequentially.
type Extractor struct {
	generator Generator
	pricing   ai.Pricing
	verbose   bool
	metrics   *telemetry.Metrics
}

type Option func(*Extractor)

func WithPricing(p ai.Pricing) Option {
	return func(e *Extractor) { e.pricing = p }
}

// WithVerbose logs per-group character counts and costs.
func WithVerbose(verbose bool) Option {
	return func(e *Extractor) { e.verbose = verbose }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

func NewExtractor(generator Generator, opts ...Option) *Extractor {
	e := &Extractor{generator: generator, pricing: ai.DefaultPricing()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract plans the groups, calls the model once per group and flattens the
// answers in group order. Any failure aborts the whole extraction and no
// partial result is returned.
func (e *Extractor) Extract(ctx context.Context, chunks []transcript.Chunk, sampleSize *int) (*Result, error) {
	plan, err := PlanGroups(len(chunks), sampleSize)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("concepts").Start(ctx, "concepts.extract")
	defer span.End()
	span.SetAttributes(
		attribute.Int("concepts.chunks", plan.Chunks),
		attribute.Int("concepts.sample_size", plan.SampleSize),
		attribute.Int("concepts.chunks_per_group", plan.ChunksPerGroup),
	)

	logger.Info("finding key concepts", "groups", plan.GroupCount, "chunks_per_group", plan.ChunksPerGroup)

	result := &Result{Plan: plan, Concepts: []Record{}}
	for i, group := range Partition(chunks, plan.ChunksPerGroup) {
		records, usage, err := e.extractGroup(ctx, group)
		e.metrics.RecordModelCall("extract", err == nil)
		if err != nil {
			return nil, fmt.Errorf("group %d of %d: %w", i+1, plan.GroupCount, err)
		}
		result.Concepts = append(result.Concepts, records...)
		result.Usage.add(usage)

		if e.verbose {
			logger.Info("group processed",
				"group", i+1,
				"chunks", usage.Chunks,
				"input_chars", usage.InputChars,
				"input_cost", usage.InputCost,
				"output_chars", usage.OutputChars,
				"output_cost", usage.OutputCost,
				"group_cost", usage.Total(),
			)
		}
	}

	if e.verbose {
		logger.Info("total analysis cost", "usd", result.Usage.TotalCost, "concepts", len(result.Concepts))
	}
	return result, nil
}

func (e *Extractor) extractGroup(ctx context.Context, group []transcript.Chunk) ([]Record, GroupUsage, error) {
	text := GroupText(group)
	raw, err := e.generator.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return nil, GroupUsage{}, err
	}

	cleaned := CleanOutput(raw)
	logger.Debug("model output", "output", cleaned)

	records, err := ParseRecords(cleaned)
	if err != nil {
		return nil, GroupUsage{}, err
	}

	inChars := ai.CharCount(text)
	outChars := ai.CharCount(cleaned)
	return records, GroupUsage{
		Chunks:      len(group),
		InputChars:  inChars,
		InputCost:   e.pricing.InputCost(inChars),
		OutputChars: outChars,
		OutputCost:  e.pricing.OutputCost(outChars),
	}, nil
}
