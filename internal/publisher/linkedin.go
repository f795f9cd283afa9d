package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ricirt/devlog-poster/internal/domain"
)

const (
	shareContentKey  = "com.linkedin.ugc.ShareContent"
	memberVisibility = "com.linkedin.ugc.MemberNetworkVisibility"
	personURNPrefix  = "urn:li:person:"

	// maxErrorBody caps how much of an error response is kept for logging.
	maxErrorBody = 4 << 10
)

// LinkedInPublisher posts text shares through the UGC Posts API on behalf of
// a single member. The base URL is injected from config so tests can point
// it at a local server.
type LinkedInPublisher struct {
	baseURL     string
	accessToken string
	author      string
	httpClient  *http.Client
}

func NewLinkedInPublisher(baseURL, accessToken, userURN string, timeout time.Duration) *LinkedInPublisher {
	author := userURN
	if !strings.HasPrefix(author, "urn:") {
		author = personURNPrefix + author
	}
	return &LinkedInPublisher{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		author:      author,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Publish makes exactly one POST to /v2/ugcPosts. Any 2xx is success; the
// returned id comes from the x-restli-id header or the body, and may be empty.
func (p *LinkedInPublisher) Publish(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(p.shareRequest(text))
	if err != nil {
		return "", &domain.PublishError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return "", &domain.PublishError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &domain.PublishError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.PublishError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if id := resp.Header.Get("X-Restli-Id"); id != "" {
		return id, nil
	}
	var share ShareResponse
	if len(respBody) > 0 && json.Unmarshal(respBody, &share) == nil {
		return share.ID, nil
	}
	return "", nil
}

func (p *LinkedInPublisher) shareRequest(text string) ShareRequest {
	return ShareRequest{
		Author:         p.author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]ShareContent{
			shareContentKey: {
				ShareCommentary:    ShareCommentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			memberVisibility: "PUBLIC",
		},
	}
}

// compile-time check that LinkedInPublisher implements Publisher
var _ Publisher = (*LinkedInPublisher)(nil)
