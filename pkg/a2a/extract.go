package a2a

import (
	"fmt"
	"strings"

	"github.com/theapemachine/a2a-helpdesk/pkg/errors"
)

// Extractor turns a finished task into the answer handed back to callers.
type Extractor interface {
	Extract(task *Task) (string, error)
}

/*
LastPartExtractor reads the text of the last part of the last artifact.
Agents that produce a single text artifact put their answer there. When
that slot is missing or not text the result is *errors.MalformedResultError,
unless Fallback is set.
*/
type LastPartExtractor struct {
	Fallback *string
}

func (extractor LastPartExtractor) Extract(task *Task) (string, error) {
	if len(task.Artifacts) == 0 {
		return extractor.fail(task, "task has no artifacts")
	}

	parts := task.Artifacts[len(task.Artifacts)-1].Parts

	if len(parts) == 0 {
		return extractor.fail(task, "last artifact has no parts")
	}

	last := parts[len(parts)-1]

	if !last.IsText() {
		if last.Kind == "" {
			return extractor.fail(task, "last part of last artifact has no text")
		}

		return extractor.fail(task, "last part of last artifact is a "+string(last.Kind)+" part, not text")
	}

	return last.Text, nil
}

func (extractor LastPartExtractor) fail(task *Task, reason string) (string, error) {
	if extractor.Fallback != nil {
		return *extractor.Fallback, nil
	}

	return "", &errors.MalformedResultError{TaskID: task.ID, Reason: reason}
}

/*
ConcatTextExtractor joins every text part of every artifact, in order,
for agents that spread their answer across several parts.
*/
type ConcatTextExtractor struct {
	Separator string
	Fallback  *string
}

func (extractor ConcatTextExtractor) Extract(task *Task) (string, error) {
	var texts []string

	for _, artifact := range task.Artifacts {
		for _, part := range artifact.Parts {
			if part.IsText() {
				texts = append(texts, part.Text)
			}
		}
	}

	if len(texts) == 0 {
		if extractor.Fallback != nil {
			return *extractor.Fallback, nil
		}

		return "", &errors.MalformedResultError{TaskID: task.ID, Reason: "no text parts in any artifact"}
	}

	return strings.Join(texts, extractor.Separator), nil
}

const (
	PolicyLastPart   = "last-part"
	PolicyConcatText = "concat-text"
)

/*
ExtractorConfig is the extractor section of the configuration. A nil
Fallback keeps malformed results as errors.
*/
type ExtractorConfig struct {
	Policy    string  `mapstructure:"policy"`
	Separator string  `mapstructure:"separator"`
	Fallback  *string `mapstructure:"fallback"`
}

// NewExtractor maps a configured policy to an Extractor. Empty means last-part.
func NewExtractor(config ExtractorConfig) (Extractor, error) {
	switch config.Policy {
	case "", PolicyLastPart:
		return LastPartExtractor{Fallback: config.Fallback}, nil
	case PolicyConcatText:
		separator := config.Separator

		if separator == "" {
			separator = "\n"
		}

		return ConcatTextExtractor{Separator: separator, Fallback: config.Fallback}, nil
	}

	return nil, fmt.Errorf(
		"unknown extractor policy %q, expected %s or %s", config.Policy, PolicyLastPart, PolicyConcatText,
	)
}
