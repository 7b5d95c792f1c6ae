// Package openai implements a minimal client for Azure-hosted OpenAI
// deployments: image generation and vision-enabled chat completions.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/orchardai/visionlab/pkg/vision"
)

// KeyHeader is the header an API key is sent in. Bearer tokens are also
// accepted by the service; see NewClientWithToken.
const KeyHeader = "api-key"

// DefaultAPIVersion is used when the caller does not pin one.
const DefaultAPIVersion = "2024-10-21"

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ContentPart is one element of a multimodal user message: either plain text
// or an image reference.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL points at an image, typically a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image content part from a data URL or plain URL.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// DataURL encodes raw image bytes as a base64 data URL for inline
// transmission in a chat message.
func DataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Message is a chat message. Content is a string for system messages and a
// []ContentPart for multimodal user messages.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// SystemMessage builds a plain-text system message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage builds a multimodal user message.
func UserMessage(parts ...ContentPart) Message {
	return Message{Role: RoleUser, Content: parts}
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client talks to a single Azure OpenAI resource.
type Client struct {
	client     *vision.Client
	apiVersion string
}

// NewClient creates a client authenticating with an API key.
func NewClient(endpoint, key, apiVersion string, opts ...vision.Option) (*Client, error) {
	return newClient(endpoint, vision.KeyCredential(KeyHeader, key), apiVersion, opts...)
}

// NewClientWithToken creates a client authenticating with a bearer token
// (e.g. one minted from an Azure credential out of band).
func NewClientWithToken(endpoint, token, apiVersion string, opts ...vision.Option) (*Client, error) {
	return newClient(endpoint, vision.BearerCredential(token), apiVersion, opts...)
}

func newClient(endpoint string, cred vision.Credential, apiVersion string, opts ...vision.Option) (*Client, error) {
	c, err := vision.NewClient("openai", endpoint, cred, opts...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Client{client: c, apiVersion: apiVersion}, nil
}

// GenerateImage asks the deployment to render one image for the prompt and
// returns the URL the service hosts the result at. The URL is short-lived;
// download promptly.
func (c *Client) GenerateImage(ctx context.Context, deployment, prompt string) (string, error) {
	if strings.TrimSpace(deployment) == "" {
		return "", fmt.Errorf("openai GenerateImage: deployment name is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("openai GenerateImage: prompt is required")
	}

	var resp imageResponse
	path := fmt.Sprintf("/openai/deployments/%s/images/generations", url.PathEscape(deployment))
	if err := c.client.PostJSON(ctx, "GenerateImage", path, c.query(), imageRequest{Prompt: prompt, N: 1}, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("openai GenerateImage: response contained no image URL")
	}
	return resp.Data[0].URL, nil
}

// ChatCompletion sends the messages to the deployment and returns the
// assistant's reply text.
func (c *Client) ChatCompletion(ctx context.Context, deployment string, messages []Message) (string, error) {
	if strings.TrimSpace(deployment) == "" {
		return "", fmt.Errorf("openai ChatCompletion: deployment name is required")
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("openai ChatCompletion: at least one message is required")
	}

	var resp chatResponse
	path := fmt.Sprintf("/openai/deployments/%s/chat/completions", url.PathEscape(deployment))
	if err := c.client.PostJSON(ctx, "ChatCompletion", path, c.query(), chatRequest{Messages: messages}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai ChatCompletion: response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("api-version", c.apiVersion)
	return q
}
