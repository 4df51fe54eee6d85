package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/tailored-agentic-units/assistant/agent"
	"github.com/tailored-agentic-units/assistant/core/protocol"
	"github.com/tailored-agentic-units/assistant/observability"
	"github.com/tailored-agentic-units/assistant/tools"
)

// ExplanationFile is written to the work directory after each description.
const ExplanationFile = "explanation.txt"

const describePrompt = `Describe video scenes in Korean in a friendly way.

For each time segment shown, describe what is visible:
지금 우리는 [실내/실외]에 있고, 주변은 [환경 설명].
왼쪽에는 [물체들], 오른쪽에는 [물체들]가 있어.
정면에는 [정면 요소]가 보여.

Style notes:
- Skip location description if unchanged from previous
- Mention people or moving objects first
- List multiple objects: "너를 기준으로 [물체1], [물체2]"
- Note camera movement: "앞으로 이동할게"
- When sides are clear: "좌우 모두 특별한 물체는 보이지 않아"

Answer with one segment per frame, keyed by its frame_index.
If you cannot answer in that structure, start each segment with its timestamp in brackets, e.g. [0-2초].

Be conversational and natural.`

const askPrompt = `You are answering questions about a video scene in Korean.
Be direct, natural, and conversational.
Focus on answering the specific question asked.`

var segmentsFormat = &protocol.ResponseFormat{
	Name:   "scene_segments",
	Schema: segmentsSchema(),
}

// segmentsSchema is closed at both object levels, as strict structured
// output requires.
func segmentsSchema() map[string]any {
	params := tools.MustParameters(&jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"segments": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"frame_index": {Type: "integer"},
						"description": {Type: "string"},
					},
					Required: []string{"frame_index", "description"},
				},
			},
		},
		Required: []string{"segments"},
	})

	params["additionalProperties"] = false
	if props, ok := params["properties"].(map[string]any); ok {
		if segments, ok := props["segments"].(map[string]any); ok {
			if items, ok := segments["items"].(map[string]any); ok {
				items["additionalProperties"] = false
			}
		}
	}
	return params
}

// Segment is the description of one frame.
type Segment struct {
	Frame int // index into the described frames, -1 when unmatched
	Label string
	Text  string
}

// Description is a scene-by-scene account of a video.
type Description struct {
	Raw        string
	Structured bool // true when the service answered in the segments schema
	Segments   []Segment
}

// For returns the description of frame.
func (d *Description) For(frame Frame) (string, bool) {
	label := frame.Label()
	for _, s := range d.Segments {
		if s.Frame == frame.Index || (s.Frame < 0 && s.Label == label) {
			return s.Text, true
		}
	}
	return "", false
}

// Text renders the segments as "[label]" blocks.
func (d *Description) Text() string {
	if len(d.Segments) == 0 {
		return d.Raw
	}
	var b strings.Builder
	for i, s := range d.Segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", s.Label, s.Text)
	}
	return b.String()
}

// Describer turns frames into scene descriptions with a vision-capable agent.
type Describer struct {
	agent    agent.Agent
	workDir  string
	observer observability.Observer
}

// DescriberOption configures a Describer.
type DescriberOption func(*Describer)

// WithWorkDir sets where explanation.txt is written. Empty skips the file.
func WithWorkDir(dir string) DescriberOption {
	return func(d *Describer) { d.workDir = dir }
}

// WithDescriberObserver sets the observer receiving description events.
func WithDescriberObserver(o observability.Observer) DescriberOption {
	return func(d *Describer) { d.observer = o }
}

// NewDescriber creates a Describer backed by a.
func NewDescriber(a agent.Agent, opts ...DescriberOption) *Describer {
	d := &Describer{agent: a, observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Describe sends every frame in a single vision call and splits the answer
// into per-frame segments.
func (d *Describer) Describe(ctx context.Context, frames []Frame, question string) (*Description, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	parts := []protocol.ContentPart{
		protocol.TextPart(fmt.Sprintf("Describe each scene naturally in Korean.\n\n%s\n\n", question)),
	}
	for _, f := range frames {
		url, err := dataURL(f.ImagePath)
		if err != nil {
			return nil, err
		}
		parts = append(parts,
			protocol.TextPart(fmt.Sprintf("\n[%s] (frame_index %d)", f.Label(), f.Index)),
			protocol.ImagePart(url, protocol.DetailLow),
		)
	}

	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, describePrompt),
		protocol.NewMessage(protocol.RoleUser, parts),
	}

	start := time.Now()
	resp, err := d.agent.Vision(ctx, messages, segmentsFormat, map[string]any{"max_tokens": 3000})
	if err != nil {
		return nil, fmt.Errorf("vision call failed: %w", err)
	}

	desc := parseDescription(resp.Content(), frames)
	if !desc.Structured {
		d.emit(ctx, EventFallback, observability.LevelWarning, map[string]any{
			"segments": len(desc.Segments),
		})
	}
	d.emit(ctx, EventDescribe, observability.LevelInfo, map[string]any{
		"frames":      len(frames),
		"segments":    len(desc.Segments),
		"structured":  desc.Structured,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if d.workDir != "" {
		if err := os.MkdirAll(d.workDir, 0o755); err != nil {
			return desc, fmt.Errorf("failed to create work directory: %w", err)
		}
		path := filepath.Join(d.workDir, ExplanationFile)
		if err := os.WriteFile(path, []byte(desc.Text()), 0o644); err != nil {
			return desc, fmt.Errorf("failed to save explanation: %w", err)
		}
	}

	return desc, nil
}

// Ask answers question about a single frame.
func (d *Describer) Ask(ctx context.Context, frame Frame, question string) (string, error) {
	url, err := dataURL(frame.ImagePath)
	if err != nil {
		return "", err
	}

	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, askPrompt),
		protocol.NewMessage(protocol.RoleUser, []protocol.ContentPart{
			protocol.TextPart("이 장면에 대한 질문: " + question),
			protocol.ImagePart(url, protocol.DetailLow),
		}),
	}

	resp, err := d.agent.Vision(ctx, messages, nil, map[string]any{"max_tokens": 500})
	if err != nil {
		return "", fmt.Errorf("vision call failed: %w", err)
	}

	d.emit(ctx, EventAsk, observability.LevelInfo, map[string]any{
		"frame": frame.Index,
		"label": frame.Label(),
	})
	return resp.Content(), nil
}

func (d *Describer) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	d.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "vision.Describer",
		Data:      data,
	})
}

func dataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

type segmentsReply struct {
	Segments []struct {
		FrameIndex  int    `json:"frame_index"`
		Description string `json:"description"`
	} `json:"segments"`
}

func parseDescription(raw string, frames []Frame) *Description {
	desc := &Description{Raw: raw}

	var reply segmentsReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &reply); err == nil && len(reply.Segments) > 0 {
		desc.Structured = true
		for _, s := range reply.Segments {
			seg := Segment{Frame: -1, Text: strings.TrimSpace(s.Description)}
			if s.FrameIndex >= 0 && s.FrameIndex < len(frames) {
				seg.Frame = s.FrameIndex
				seg.Label = frames[s.FrameIndex].Label()
			}
			desc.Segments = append(desc.Segments, seg)
		}
		return desc
	}

	desc.Segments = splitMarkers(raw, frames)
	return desc
}

// splitMarkers scrapes free text of the form "[0-2초]\n...". Lines before the
// first marker are dropped.
func splitMarkers(raw string, frames []Frame) []Segment {
	byLabel := make(map[string]int, len(frames))
	for _, f := range frames {
		byLabel[f.Label()] = f.Index
	}

	var segments []Segment
	var current *Segment
	var body []string
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(body, "\n"))
			segments = append(segments, *current)
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, "초]") {
			flush()
			label := strings.TrimPrefix(trimmed[:strings.Index(trimmed, "초]")+len("초")], "[")
			seg := Segment{Frame: -1, Label: label}
			if idx, ok := byLabel[label]; ok {
				seg.Frame = idx
			}
			current = &seg
			body = body[:0]
			if rest := strings.TrimSpace(trimmed[strings.Index(trimmed, "초]")+len("초]"):]); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return segments
}
