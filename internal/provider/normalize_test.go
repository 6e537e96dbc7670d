package provider

import (
	"math"
	"testing"
)

func TestNormalizeWhisperDefaultsConfidence(t *testing.T) {
	res := &Result{
		Kind: KindWhisper,
		Whisper: &WhisperResponse{
			Text:  " Hello world. ",
			Words: []WhisperWord{{Word: " Hello", Start: 0, End: 0.4}, {Word: " world.", Start: 0.4, End: 0.9}},
		},
	}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Text != "Hello world." {
		t.Errorf("text = %q", frag.Text)
	}
	if frag.Confidence != 0.9 {
		t.Errorf("confidence = %v, want the 0.9 default", frag.Confidence)
	}
	if len(frag.Words) != 2 {
		t.Fatalf("got %d words, want 2", len(frag.Words))
	}
	if frag.Words[0].Word != "Hello" {
		t.Errorf("word = %q, want trimmed %q", frag.Words[0].Word, "Hello")
	}
	if frag.Words[0].Confidence != 0.9 {
		t.Errorf("word confidence = %v, want 0.9", frag.Words[0].Confidence)
	}
}

func TestNormalizeWhisperWithoutTimestamps(t *testing.T) {
	res := &Result{Kind: KindWhisper, Whisper: &WhisperResponse{Text: "no words"}}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Words == nil || len(frag.Words) != 0 {
		t.Errorf("words = %v, want empty non-nil slice", frag.Words)
	}
	if frag.Entities == nil || len(frag.Entities) != 0 {
		t.Errorf("entities = %v, want empty non-nil map", frag.Entities)
	}
}

func TestNormalizeAssemblyAI(t *testing.T) {
	res := &Result{
		Kind: KindAssemblyAI,
		AssemblyAI: &AssemblyAIResponse{
			Text:       "one two",
			Confidence: 0.87,
			Words: []AssemblyAIWord{
				{Text: "one", Start: 100, End: 500, Confidence: 0.9},
				{Text: "two", Start: 500, End: 1200, Confidence: 0.84},
			},
			Utterances: []AssemblyAIUtter{
				{Speaker: "A", Text: "one two", Start: 100, End: 1200},
			},
			Entities: []AssemblyAIEntity{
				{EntityType: "Person", Text: "Ada"},
				{EntityType: "location", Text: "London"},
			},
		},
	}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Confidence != 0.87 {
		t.Errorf("confidence = %v, want 0.87", frag.Confidence)
	}
	// Millisecond times convert to seconds
	if frag.Words[0].StartTime != 0.1 || frag.Words[1].EndTime != 1.2 {
		t.Errorf("word times = %v / %v, want 0.1 / 1.2", frag.Words[0].StartTime, frag.Words[1].EndTime)
	}
	if len(frag.Speakers) != 1 || frag.Speakers[0].Speaker != "Speaker A" {
		t.Errorf("speakers = %+v", frag.Speakers)
	}
	// Entity labels are lowercased
	if got := frag.Entities["person"]; len(got) != 1 || got[0] != "Ada" {
		t.Errorf("person entities = %v", got)
	}
	if got := frag.Entities["location"]; len(got) != 1 || got[0] != "London" {
		t.Errorf("location entities = %v", got)
	}
}

func TestNormalizeDeepgram(t *testing.T) {
	spk0, spk1 := 0, 1
	res := &Result{
		Kind: KindDeepgram,
		Deepgram: &DeepgramResponse{
			Results: DeepgramResults{Channels: []DeepgramChannel{{
				Alternatives: []DeepgramAlternative{{
					Transcript: "hi there friend",
					Confidence: 0.95,
					Words: []DeepgramWord{
						{Word: "hi", Start: 0, End: 0.3, Confidence: 0.99, Speaker: &spk0},
						{Word: "there", Start: 0.3, End: 0.6, Confidence: 0.97, Speaker: &spk0},
						{Word: "friend", Start: 0.6, End: 1.0, Confidence: 0.9, Speaker: &spk1},
					},
					Entities: []DeepgramEntity{{Label: "NAME", Value: "friend"}},
				}},
			}}},
		},
	}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Text != "hi there friend" || frag.Confidence != 0.95 {
		t.Errorf("text/confidence = %q / %v", frag.Text, frag.Confidence)
	}
	// Per-word speaker tags fold into contiguous spans
	if len(frag.Speakers) != 2 {
		t.Fatalf("got %d speaker spans, want 2", len(frag.Speakers))
	}
	if frag.Speakers[0].Speaker != "Speaker 0" || frag.Speakers[0].Text != "hi there" {
		t.Errorf("span 0 = %+v", frag.Speakers[0])
	}
	if frag.Speakers[1].Speaker != "Speaker 1" || frag.Speakers[1].Text != "friend" {
		t.Errorf("span 1 = %+v", frag.Speakers[1])
	}
	if got := frag.Entities["name"]; len(got) != 1 || got[0] != "friend" {
		t.Errorf("name entities = %v", got)
	}
}

func TestNormalizeDeepgramEmptyResponse(t *testing.T) {
	res := &Result{Kind: KindDeepgram, Deepgram: &DeepgramResponse{}}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Text != "" || len(frag.Words) != 0 || len(frag.Entities) != 0 {
		t.Errorf("empty response should normalize to empty fragment, got %+v", frag)
	}
}

func TestNormalizeGoogle(t *testing.T) {
	res := &Result{
		Kind: KindGoogle,
		Google: &GoogleResponse{
			Results: []GoogleResult{
				{Alternatives: []GoogleAlternative{{
					Transcript: "first part",
					Confidence: 0.8,
					Words: []GoogleWord{
						{Word: "first", StartTime: "0s", EndTime: "0.500s"},
						{Word: "part", StartTime: "0.500s", EndTime: "1.100s"},
					},
				}}},
				{Alternatives: []GoogleAlternative{{
					Transcript: "second part",
					Confidence: 0.9,
				}}},
			},
		},
	}

	frag, err := Normalize(res)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if frag.Text != "first part second part" {
		t.Errorf("text = %q", frag.Text)
	}
	if math.Abs(frag.Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %v, want 0.85 (averaged)", frag.Confidence)
	}
	if frag.Words[1].EndTime != 1.1 {
		t.Errorf("word end = %v, want 1.1", frag.Words[1].EndTime)
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	if _, err := Normalize(&Result{Kind: "azure"}); err == nil {
		t.Fatal("expected error for unknown result kind")
	}
	if _, err := Normalize(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
