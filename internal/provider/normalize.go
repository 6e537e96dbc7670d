package provider

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/audioscribe/backend/internal/transcript"
)

// defaultConfidence is reported when a provider returns no confidence
// score of its own. The 0.9 baseline is a documented approximation
// carried over from the legacy pipeline, not a measured quantity.
const defaultConfidence = 0.9

// Normalize maps a raw provider result into a canonical transcript
// fragment. Missing optional fields (word timestamps, speakers,
// entities) become empty values, never errors.
func Normalize(res *Result) (*transcript.Fragment, error) {
	if res == nil {
		return nil, fmt.Errorf("nil provider result")
	}
	switch res.Kind {
	case KindWhisper:
		return normalizeWhisper(res.Whisper), nil
	case KindAssemblyAI:
		return normalizeAssemblyAI(res.AssemblyAI), nil
	case KindDeepgram:
		return normalizeDeepgram(res.Deepgram), nil
	case KindGoogle:
		return normalizeGoogle(res.Google), nil
	default:
		return nil, fmt.Errorf("unknown provider result kind: %q", res.Kind)
	}
}

func normalizeWhisper(r *WhisperResponse) *transcript.Fragment {
	frag := &transcript.Fragment{
		Text:       strings.TrimSpace(r.Text),
		Words:      []transcript.Word{},
		Entities:   map[string][]string{},
		Confidence: defaultConfidence, // whisper endpoints report none
	}
	for _, w := range r.Words {
		frag.Words = append(frag.Words, transcript.Word{
			Word:       strings.TrimSpace(w.Word),
			StartTime:  w.Start,
			EndTime:    w.End,
			Confidence: defaultConfidence,
		})
	}
	return frag
}

func normalizeAssemblyAI(r *AssemblyAIResponse) *transcript.Fragment {
	frag := &transcript.Fragment{
		Text:       strings.TrimSpace(r.Text),
		Words:      []transcript.Word{},
		Entities:   map[string][]string{},
		Confidence: r.Confidence,
	}
	if frag.Confidence == 0 {
		frag.Confidence = defaultConfidence
	}
	for _, w := range r.Words {
		frag.Words = append(frag.Words, transcript.Word{
			Word:       w.Text,
			StartTime:  float64(w.Start) / 1000,
			EndTime:    float64(w.End) / 1000,
			Confidence: w.Confidence,
		})
	}
	for _, u := range r.Utterances {
		frag.Speakers = append(frag.Speakers, transcript.SpeakerSegment{
			Speaker:   "Speaker " + u.Speaker,
			Text:      u.Text,
			StartTime: float64(u.Start) / 1000,
			EndTime:   float64(u.End) / 1000,
		})
	}
	for _, e := range r.Entities {
		key := strings.ToLower(e.EntityType)
		frag.Entities[key] = append(frag.Entities[key], e.Text)
	}
	return frag
}

func normalizeDeepgram(r *DeepgramResponse) *transcript.Fragment {
	frag := &transcript.Fragment{
		Words:      []transcript.Word{},
		Entities:   map[string][]string{},
		Confidence: defaultConfidence,
	}
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return frag
	}
	alt := r.Results.Channels[0].Alternatives[0]
	frag.Text = strings.TrimSpace(alt.Transcript)
	if alt.Confidence > 0 {
		frag.Confidence = alt.Confidence
	}
	for _, w := range alt.Words {
		frag.Words = append(frag.Words, transcript.Word{
			Word:       w.Word,
			StartTime:  w.Start,
			EndTime:    w.End,
			Confidence: w.Confidence,
		})
	}
	frag.Speakers = deepgramSpeakers(alt.Words)
	for _, e := range alt.Entities {
		key := strings.ToLower(e.Label)
		frag.Entities[key] = append(frag.Entities[key], e.Value)
	}
	return frag
}

// deepgramSpeakers folds per-word speaker tags into contiguous spans.
func deepgramSpeakers(words []DeepgramWord) []transcript.SpeakerSegment {
	var spans []transcript.SpeakerSegment
	var cur *transcript.SpeakerSegment
	var parts []string
	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(parts, " ")
			spans = append(spans, *cur)
			cur, parts = nil, nil
		}
	}
	for _, w := range words {
		if w.Speaker == nil {
			continue
		}
		label := fmt.Sprintf("Speaker %d", *w.Speaker)
		if cur == nil || cur.Speaker != label {
			flush()
			cur = &transcript.SpeakerSegment{Speaker: label, StartTime: w.Start}
		}
		cur.EndTime = w.End
		parts = append(parts, w.Word)
	}
	flush()
	return spans
}

func normalizeGoogle(r *GoogleResponse) *transcript.Fragment {
	frag := &transcript.Fragment{
		Words:      []transcript.Word{},
		Entities:   map[string][]string{},
		Confidence: defaultConfidence,
	}
	var texts []string
	var confSum float64
	var confCount int
	for _, res := range r.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		alt := res.Alternatives[0]
		texts = append(texts, strings.TrimSpace(alt.Transcript))
		if alt.Confidence > 0 {
			confSum += alt.Confidence
			confCount++
		}
		for _, w := range alt.Words {
			frag.Words = append(frag.Words, transcript.Word{
				Word:       w.Word,
				StartTime:  parseGoogleDuration(w.StartTime),
				EndTime:    parseGoogleDuration(w.EndTime),
				Confidence: defaultConfidence, // word confidence not in v1 sync responses
			})
		}
	}
	frag.Text = strings.Join(texts, " ")
	if confCount > 0 {
		frag.Confidence = confSum / float64(confCount)
	}
	return frag
}

// parseGoogleDuration parses protobuf duration strings like "3.100s".
func parseGoogleDuration(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
	if err != nil {
		return 0
	}
	return v
}
