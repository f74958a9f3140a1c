// Package transport sends reply activities back to the conversational
// platform that delivered an inbound message.
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"quotebot/internal/domain"

	"github.com/google/uuid"
)

// ChannelAccount identifies one party of a conversation.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the conversation itself.
type ConversationAccount struct {
	ID string `json:"id"`
}

// Attachment carries non-text content on an activity.
type Attachment struct {
	ContentType string `json:"contentType"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Activity is the wire shape exchanged with the messaging platform.
// Inbound messages decode into it and replies are encoded from it.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	Text         string              `json:"text,omitempty"`
	From         ChannelAccount      `json:"from,omitempty"`
	Recipient    ChannelAccount      `json:"recipient,omitempty"`
	Conversation ConversationAccount `json:"conversation,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	Attachments  []Attachment        `json:"attachments,omitempty"`
}

// Connector posts reply activities to a conversation's service URL.
type Connector struct {
	appID      string
	credential string
	httpClient *http.Client
}

// NewConnector creates a connector authenticating with the given app
// identity. All requests share one tuned client with a bounded timeout.
func NewConnector(appID, appPassword string, timeout time.Duration) *Connector {
	return &Connector{
		appID:      appID,
		credential: appPassword,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 3 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   3 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

// ReplyText posts a text reply into the conversation.
func (c *Connector) ReplyText(ctx context.Context, ref domain.ConversationRef, text string) error {
	return c.post(ctx, ref, Activity{
		Type: "message",
		Text: text,
	})
}

// ReplyAudio posts a synthesized utterance into the conversation as an
// inline audio attachment.
func (c *Connector) ReplyAudio(ctx context.Context, ref domain.ConversationRef, contentType string, audio []byte) error {
	return c.post(ctx, ref, Activity{
		Type: "message",
		Attachments: []Attachment{{
			ContentType: contentType,
			ContentURL:  "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(audio),
			Name:        "utterance",
		}},
	})
}

func (c *Connector) post(ctx context.Context, ref domain.ConversationRef, activity Activity) error {
	if ref.ServiceURL == "" {
		return fmt.Errorf("conversation %s has no service URL", ref.ConversationID)
	}

	activity.ID = uuid.NewString()
	activity.ReplyToID = ref.ActivityID
	activity.From = ChannelAccount{ID: ref.BotID}
	activity.Recipient = ChannelAccount{ID: ref.UserID}
	activity.Conversation = ConversationAccount{ID: ref.ConversationID}

	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities",
		trimSlash(ref.ServiceURL), url.PathEscape(ref.ConversationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build activity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return fmt.Errorf("post activity: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
