package provider

// Kind discriminates the closed set of provider result shapes.
type Kind string

const (
	KindWhisper    Kind = "whisper"
	KindAssemblyAI Kind = "assemblyai"
	KindDeepgram   Kind = "deepgram"
	KindGoogle     Kind = "google"
)

// Result is the tagged union of provider responses. Exactly one payload
// field matching Kind is set. Results are transient: the normalizer
// consumes them immediately and they are never stored.
type Result struct {
	Kind       Kind
	Whisper    *WhisperResponse
	AssemblyAI *AssemblyAIResponse
	Deepgram   *DeepgramResponse
	Google     *GoogleResponse
}

// WhisperResponse is the verbose_json body of an OpenAI-compatible
// /v1/audio/transcriptions endpoint (OpenAI Whisper, whisper.cpp,
// faster-whisper servers).
type WhisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []WhisperSegment `json:"segments"`
	Words    []WhisperWord    `json:"words"`
}

type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type WhisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AssemblyAIResponse is the polled transcript object of the AssemblyAI
// v2 REST API. Times are milliseconds.
type AssemblyAIResponse struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Text       string             `json:"text"`
	Confidence float64            `json:"confidence"`
	Error      string             `json:"error,omitempty"`
	Words      []AssemblyAIWord   `json:"words"`
	Utterances []AssemblyAIUtter  `json:"utterances"`
	Entities   []AssemblyAIEntity `json:"entities"`
}

type AssemblyAIWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

type AssemblyAIUtter struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

type AssemblyAIEntity struct {
	EntityType string `json:"entity_type"`
	Text       string `json:"text"`
}

// DeepgramResponse is the /v1/listen response body.
type DeepgramResponse struct {
	Metadata DeepgramMetadata `json:"metadata"`
	Results  DeepgramResults  `json:"results"`
}

type DeepgramMetadata struct {
	Duration   float64  `json:"duration"`
	Channels   int      `json:"channels"`
	SampleRate int      `json:"sample_rate"`
	Models     []string `json:"models"`
}

type DeepgramResults struct {
	Channels []DeepgramChannel `json:"channels"`
}

type DeepgramChannel struct {
	Alternatives []DeepgramAlternative `json:"alternatives"`
}

type DeepgramAlternative struct {
	Transcript string           `json:"transcript"`
	Confidence float64          `json:"confidence"`
	Words      []DeepgramWord   `json:"words"`
	Entities   []DeepgramEntity `json:"entities"`
}

type DeepgramWord struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker,omitempty"`
}

type DeepgramEntity struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Start float64 `json:"start_word,omitempty"`
}

// GoogleResponse is the speech:recognize REST response body. Word times
// arrive as duration strings like "3.100s".
type GoogleResponse struct {
	Results []GoogleResult `json:"results"`
}

type GoogleResult struct {
	Alternatives []GoogleAlternative `json:"alternatives"`
}

type GoogleAlternative struct {
	Transcript string       `json:"transcript"`
	Confidence float64      `json:"confidence"`
	Words      []GoogleWord `json:"words"`
}

type GoogleWord struct {
	Word       string `json:"word"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	SpeakerTag int    `json:"speakerTag,omitempty"`
}
