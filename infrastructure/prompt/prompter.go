// Package prompt implements the interactive ports (permissions, picker,
// share confirmation) on top of terminal prompts.
package prompt

import (
	"errors"

	"livephoto-audio/domain/media"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Prompter interface for interactive prompts (allows mocking in tests).
// Implementations return media.ErrUserCancelled when the user interrupts.
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

// NewSurveyPrompter creates a new survey prompter
func NewSurveyPrompter() *SurveyPrompter {
	return &SurveyPrompter{}
}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", translate(err)
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, translate(err)
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if defaultValue != "" {
		prompt.Default = defaultValue
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", translate(err)
	}
	return result, nil
}

// translate maps a Ctrl-C in any prompt to a user cancellation
func translate(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return media.ErrUserCancelled
	}
	return err
}
