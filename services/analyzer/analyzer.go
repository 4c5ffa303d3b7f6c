// Package analyzer converts raw query text into a structured complexity
// descriptor used for model selection.
//
// Analysis is a deterministic, pure function of the query text and the
// analyzer's static pattern tables: no I/O, no side effects, and no failure
// modes. Empty input degrades to a default-complexity descriptor instead of
// faulting.
package analyzer

import (
	"regexp"
	"unicode"

	"github.com/juyterman1000/smartllm-router/models"
)

// taskPattern backs one task category with its detection patterns. The
// category list is ordered: it is a priority list, and the first category
// with any matching pattern wins.
type taskPattern struct {
	task     models.TaskType
	patterns []*regexp.Regexp
}

// Analyzer detects task type, required capabilities and an overall
// complexity score for incoming queries.
type Analyzer struct {
	taskPatterns []taskPattern
}

// Complexity score component weights. The caps guarantee the sum stays in
// [0,1]: 0.2 + 0.2 + 0.4 + 0.2.
const (
	tokenCountNormalizer = 500.0
	tokenWeight          = 0.2
	vocabularyWeight     = 0.2
	taskWeight           = 0.4
	capabilityWeight     = 0.1
	capabilityCap        = 0.2

	// Queries longer than this many bytes require long-context support.
	longContextThreshold = 1000

	// Words longer than this many runes are split into subword chunks.
	maxWordRunes = 6
	subwordRunes = 4
)

var (
	mathOperatorPattern     = regexp.MustCompile(`\d+[+\-*/]\d+`)
	structuredOutputPattern = regexp.MustCompile(`json|xml|yaml|csv`)
)

// outputMultipliers estimates output size as a factor of input size per task.
var outputMultipliers = map[models.TaskType]float64{
	models.TaskSimpleQA:      0.5,
	models.TaskSummarization: 0.3,
	models.TaskCode:          2.5,
	models.TaskAnalysis:      2.0,
	models.TaskCreative:      3.0,
	models.TaskMath:          1.5,
	models.TaskReasoning:     2.0,
	models.TaskGeneral:       1.0,
}

// taskBaseScores rates the inherent difficulty of each task type.
var taskBaseScores = map[models.TaskType]float64{
	models.TaskSimpleQA:      0.1,
	models.TaskSummarization: 0.3,
	models.TaskCode:          0.8,
	models.TaskAnalysis:      0.7,
	models.TaskCreative:      0.6,
	models.TaskMath:          0.8,
	models.TaskReasoning:     0.9,
	models.TaskGeneral:       0.5,
}

// New creates an analyzer with the built-in task pattern tables compiled.
func New() *Analyzer {
	compile := func(exprs ...string) []*regexp.Regexp {
		compiled := make([]*regexp.Regexp, len(exprs))
		for i, expr := range exprs {
			compiled[i] = regexp.MustCompile(expr)
		}
		return compiled
	}

	return &Analyzer{
		taskPatterns: []taskPattern{
			{models.TaskSimpleQA, compile(
				`what is|what are|who is|who are|when is|when was|where is`,
				`define|definition of|meaning of`,
				`yes or no|true or false`,
			)},
			{models.TaskSummarization, compile(
				`summarize|summary of|tldr|key points`,
				`main idea|brief overview|condensed version`,
			)},
			{models.TaskCode, compile(
				"```|code|function|implement|algorithm|debug|fix",
				`python|javascript|java|c\+\+|sql|programming`,
			)},
			{models.TaskAnalysis, compile(
				`analyze|analysis|compare|contrast|evaluate`,
				`pros and cons|advantages|disadvantages|implications`,
			)},
			{models.TaskCreative, compile(
				`write a story|poem|creative|imagine|fictional`,
				`brainstorm|ideas for|suggestions for`,
			)},
			{models.TaskMath, compile(
				`calculate|solve|equation|formula|mathematical`,
				`derivative|integral|probability|statistics`,
			)},
			{models.TaskReasoning, compile(
				`explain why|how does|logical|reasoning|think through`,
				`step by step|walkthrough|systematic`,
			)},
		},
	}
}

// Analyze produces the complexity descriptor for a query.
func (a *Analyzer) Analyze(query string) models.QueryComplexity {
	lower := toLower(query)

	tokens := tokenize(lower)
	tokenCount := len(tokens)

	vocabularyComplexity := 0.0
	if tokenCount > 0 {
		distinct := make(map[string]struct{}, tokenCount)
		for _, tok := range tokens {
			distinct[tok] = struct{}{}
		}
		vocabularyComplexity = float64(len(distinct)) / float64(tokenCount)
	}

	taskType := a.detectTaskType(lower)
	capabilities := detectCapabilities(query, lower, taskType)

	return models.QueryComplexity{
		TokenCount:            tokenCount,
		VocabularyComplexity:  vocabularyComplexity,
		TaskType:              taskType,
		EstimatedOutputTokens: estimateOutputTokens(taskType, tokenCount),
		RequiredCapabilities:  capabilities,
		ComplexityScore:       complexityScore(tokenCount, vocabularyComplexity, taskType, capabilities),
	}
}

// detectTaskType returns the first category whose any pattern matches.
func (a *Analyzer) detectTaskType(lower string) models.TaskType {
	for _, tp := range a.taskPatterns {
		for _, pattern := range tp.patterns {
			if pattern.MatchString(lower) {
				return tp.task
			}
		}
	}
	return models.TaskGeneral
}

func estimateOutputTokens(taskType models.TaskType, inputTokens int) int {
	multiplier, ok := outputMultipliers[taskType]
	if !ok {
		multiplier = 1.0
	}
	return int(float64(inputTokens) * multiplier)
}

func detectCapabilities(query, lower string, taskType models.TaskType) []models.Capability {
	var capabilities []models.Capability

	if taskType == models.TaskCode {
		capabilities = append(capabilities, models.CapabilityCodeGeneration)
	}
	if taskType == models.TaskMath || mathOperatorPattern.MatchString(query) {
		capabilities = append(capabilities, models.CapabilityMathReasoning)
	}
	if taskType == models.TaskAnalysis || taskType == models.TaskReasoning {
		capabilities = append(capabilities, models.CapabilityComplexReasoning)
	}
	if len(query) > longContextThreshold {
		capabilities = append(capabilities, models.CapabilityLongContext)
	}
	if structuredOutputPattern.MatchString(lower) {
		capabilities = append(capabilities, models.CapabilityStructuredOutput)
	}

	return capabilities
}

func complexityScore(tokenCount int, vocabularyComplexity float64, taskType models.TaskType, capabilities []models.Capability) float64 {
	tokenScore := min(float64(tokenCount)/tokenCountNormalizer, 1.0) * tokenWeight
	vocabScore := vocabularyComplexity * vocabularyWeight

	base, ok := taskBaseScores[taskType]
	if !ok {
		base = taskBaseScores[models.TaskGeneral]
	}
	taskScore := base * taskWeight

	capabilityScore := min(float64(len(capabilities))*capabilityWeight, capabilityCap)

	return tokenScore + vocabScore + taskScore + capabilityScore
}

// tokenize splits lowercased text into a stable stream of word and
// punctuation tokens, chunking long words into fixed-size subword pieces to
// approximate a subword vocabulary. The scheme is deterministic across runs,
// which is all routing requires; it is not a real language-model tokenizer.
func tokenize(lower string) []string {
	var tokens []string
	var word []rune

	flush := func() {
		if len(word) == 0 {
			return
		}
		if len(word) <= maxWordRunes {
			tokens = append(tokens, string(word))
		} else {
			for start := 0; start < len(word); start += subwordRunes {
				end := start + subwordRunes
				if end > len(word) {
					end = len(word)
				}
				tokens = append(tokens, string(word[start:end]))
			}
		}
		word = word[:0]
	}

	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func toLower(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return string(runes)
}
