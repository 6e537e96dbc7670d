package transcript

// Word is a single transcribed word with timing and confidence.
type Word struct {
	Word       string  `json:"word"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Confidence float64 `json:"confidence"`
}

// SpeakerSegment is a span of the transcript attributed to one speaker.
type SpeakerSegment struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Alternative is one transcript hypothesis with its confidence.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Channel holds the alternatives for one audio channel.
type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Results mirrors the Deepgram-style result layout that downstream
// consumers (UI, storage) expect regardless of which provider ran.
type Results struct {
	Transcripts []Alternative `json:"transcripts"`
	Channels    []Channel     `json:"channels"`
}

// Metadata describes how the transcript was produced.
type Metadata struct {
	FileName          string    `json:"fileName"`
	ModelUsed         string    `json:"modelUsed"`
	Words             []Word    `json:"words"`
	SegmentConfidence []float64 `json:"segmentConfidence,omitempty"`
}

// Canonical is the provider-independent transcript every backend
// normalizes into. Words are globally time-ordered across merged
// segments; the full text is the space-joined concatenation of segment
// texts in segment-index order.
type Canonical struct {
	Results  Results             `json:"results"`
	Metadata Metadata            `json:"metadata"`
	Entities map[string][]string `json:"entities"`
	Speakers []SpeakerSegment    `json:"speakers,omitempty"`
	Warning  string              `json:"warning,omitempty"`
}

// Text returns the full transcript text, or "" when empty.
func (c *Canonical) Text() string {
	if c == nil || len(c.Results.Transcripts) == 0 {
		return ""
	}
	return c.Results.Transcripts[0].Transcript
}

// Confidence returns the aggregate confidence, or 0 when empty.
func (c *Canonical) Confidence() float64 {
	if c == nil || len(c.Results.Transcripts) == 0 {
		return 0
	}
	return c.Results.Transcripts[0].Confidence
}

// Fragment is the normalized output of one segment's provider call.
// Word and speaker times are relative to the segment start; the batch
// merge shifts them onto the file timeline.
type Fragment struct {
	Text       string
	Words      []Word
	Speakers   []SpeakerSegment
	Entities   map[string][]string
	Confidence float64
}

// Progress reports aggregate batch state after each segment settles.
// Percentage is monotonically non-decreasing within one run and reaches
// 100 exactly once, on the final segment's completion.
type Progress struct {
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Stage      string `json:"stage"`
}
