// Package server is the chimerad backend: the generation studio (OpenRouter
// text and image models), the SQLite snapshot store, image asset storage,
// and the HTTP API the chimera client consumes.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	textModel  = "anthropic/claude-haiku-4.5"
	imageModel = "google/gemini-3-pro-image-preview"

	openRouterChatURL = "https://openrouter.ai/api/v1/chat/completions"
)

// Studio is the creative backend: it invents creature descriptions, renders
// brand-new creatures from a prompt, and imagines the offspring of two
// parent images.
type Studio interface {
	RandomPrompt(ctx context.Context) (string, error)
	// Conjure renders a creature from a text prompt and names it.
	Conjure(ctx context.Context, prompt string) (name string, png []byte, err error)
	// Crossbreed renders offspring of the two parent images and names it.
	Crossbreed(ctx context.Context, parent1Name, parent2Name string, parent1PNG, parent2PNG []byte) (name string, png []byte, err error)
}

// openRouterStudio implements Studio against OpenRouter. Text completions
// go through the SDK; the image model speaks to the same chat endpoint
// directly because the SDK's response types do not surface the image
// output modality (message.images).
type openRouterStudio struct {
	text   *openrouter.Client
	httpc  *http.Client
	apiKey string
	log    *zap.Logger
}

// NewStudio returns an OpenRouter-backed studio.
func NewStudio(apiKey string, log *zap.Logger) Studio {
	if log == nil {
		log = zap.NewNop()
	}
	return &openRouterStudio{
		text:   openrouter.NewClient(apiKey),
		httpc:  &http.Client{Timeout: 4 * time.Minute},
		apiKey: apiKey,
		log:    log,
	}
}

const randomPromptInstruction = `Generate a single creative and unique fantasy creature description for an image generator.
Be imaginative! Mix unexpected elements like:
- Animal hybrids (e.g., "a bioluminescent axolotl-phoenix")
- Elemental creatures (e.g., "a storm spirit made of lightning")
- Mythical beings (e.g., "a tiny dragon that lives in teacups")
- Surreal combinations (e.g., "a crystal deer with galaxies in its antlers")

Respond with ONLY the creature description, nothing else. Keep it under 15 words.`

func (s *openRouterStudio) RandomPrompt(ctx context.Context) (string, error) {
	resp, err := s.text.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: textModel,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: randomPromptInstruction},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("random prompt completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("random prompt: no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content.Text), nil
}

const conjureTemplate = `Generate an image of: %s

Make it detailed and visually appealing.

Also give it a short creative name. Respond with ONLY the name.`

func (s *openRouterStudio) Conjure(ctx context.Context, prompt string) (string, []byte, error) {
	return s.imagine(ctx, []contentPart{
		{Type: "text", Text: fmt.Sprintf(conjureTemplate, prompt)},
	})
}

const crossbreedTemplate = `You are a fantasy creature designer. Two magical creatures have bred and produced offspring.

PARENT 1: %q (see first image)
PARENT 2: %q (see second image)

Your task: Imagine and design their OFFSPRING - a completely NEW fantastical creature that could believably be born from these two parents.

Think about:
- What body structure would it inherit? (size, shape, limbs)
- What textures and materials? (scales, fur, crystal, coral, etc.)
- What colors and patterns would emerge from mixing the parents?
- What special abilities or magical properties might it have?
- What environment would it live in?

Create a detailed, imaginative image of this NEW creature. It should feel like a real fantasy species that inherited traits from both parents in surprising and creative ways. Don't just blend the images - imagine what their CHILD would actually look like as a unique being.

Also invent a creative species name for this offspring that reflects its heritage. Respond with ONLY the name, nothing else.`

func (s *openRouterStudio) Crossbreed(ctx context.Context, parent1Name, parent2Name string, parent1PNG, parent2PNG []byte) (string, []byte, error) {
	prompt := fmt.Sprintf(crossbreedTemplate, parent1Name, parent2Name)
	return s.imagine(ctx, []contentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &imageURLPart{URL: pngDataURL(parent1PNG)}},
		{Type: "image_url", ImageURL: &imageURLPart{URL: pngDataURL(parent2PNG)}},
	})
}

// --- Raw image-model call ---

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type imagineRequest struct {
	Model    string           `json:"model"`
	Messages []imagineMessage `json:"messages"`
}

type imagineMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type imagineResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				Type     string `json:"type"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// imagine runs the image model and extracts the first returned image plus
// whatever text the model produced (the creature name).
func (s *openRouterStudio) imagine(ctx context.Context, parts []contentPart) (string, []byte, error) {
	payload, err := json.Marshal(imagineRequest{
		Model:    imageModel,
		Messages: []imagineMessage{{Role: "user", Content: parts}},
	})
	if err != nil {
		return "", nil, fmt.Errorf("encode image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterChatURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("image model request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("image model response: %w", err)
	}

	var parsed imagineResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("decode image model response: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("image model: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("image model: no choices returned")
	}

	msg := parsed.Choices[0].Message
	for _, img := range msg.Images {
		if img.Type != "image_url" {
			continue
		}
		png, err := decodeDataURL(img.ImageURL.URL)
		if err != nil {
			s.log.Warn("skipping undecodable image part", zap.Error(err))
			continue
		}
		return strings.TrimSpace(msg.Content), png, nil
	}
	return "", nil, fmt.Errorf("image model: no image generated")
}

func pngDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// decodeDataURL extracts the payload of a data:image/...;base64,... URL.
func decodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:image") {
		return nil, fmt.Errorf("not an image data URL")
	}
	_, b64, ok := strings.Cut(url, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}
