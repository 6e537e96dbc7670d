package provider

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Option identifies a capability an adapter may or may not offer.
type Option string

const (
	OptionPunctuation     Option = "punctuation"
	OptionDiarization     Option = "diarization"
	OptionVocabulary      Option = "vocabulary"
	OptionProfanityFilter Option = "profanity_filter"
	OptionWordTimestamps  Option = "word_timestamps"
	OptionEntityDetection Option = "entity_detection"
	OptionTopicDetection  Option = "topic_detection"
	OptionRedaction       Option = "redaction"
)

// Options is the provider-agnostic transcription configuration.
// Immutable for the duration of one batch run.
type Options struct {
	Punctuate       bool     `json:"punctuate"`
	Diarize         bool     `json:"diarize"`
	SpeakerCount    int      `json:"speaker_count,omitempty" validate:"omitempty,min=1,max=10"`
	Language        string   `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	Vocabulary      []string `json:"vocabulary,omitempty" validate:"omitempty,max=100,dive,min=1,max=50"`
	Model           string   `json:"model,omitempty"`
	ProfanityFilter bool     `json:"profanity_filter"`
	WordTimestamps  bool     `json:"word_timestamps"`
	DetectTopics    bool     `json:"detect_topics"`
	Redact          []string `json:"redact,omitempty" validate:"omitempty,max=10,dive,oneof=pci ssn numbers"`
}

var validate = validator.New()

// Validate checks field-level constraints before any network call.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid transcription options: %w", err)
	}
	return nil
}

// requested returns the capabilities this option set actually exercises.
func (o Options) requested() []Option {
	var opts []Option
	if o.Diarize {
		opts = append(opts, OptionDiarization)
	}
	if len(o.Vocabulary) > 0 {
		opts = append(opts, OptionVocabulary)
	}
	if o.ProfanityFilter {
		opts = append(opts, OptionProfanityFilter)
	}
	if o.WordTimestamps {
		opts = append(opts, OptionWordTimestamps)
	}
	if o.DetectTopics {
		opts = append(opts, OptionTopicDetection)
	}
	if len(o.Redact) > 0 {
		opts = append(opts, OptionRedaction)
	}
	return opts
}

// CheckSupport fails fast with UnsupportedOptionError when the adapter
// cannot honor one of the requested options.
func CheckSupport(a Adapter, opts Options) error {
	for _, opt := range opts.requested() {
		if !a.Supports(opt) {
			return &UnsupportedOptionError{Provider: a.Name(), Option: opt}
		}
	}
	return nil
}
