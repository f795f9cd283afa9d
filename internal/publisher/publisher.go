package publisher

import "context"

// Publisher delivers finished post text to a social network.
// Implementations return a *domain.PublishError for transport, auth and API failures.
type Publisher interface {
	Publish(ctx context.Context, text string) (postID string, err error)
}

// ShareRequest is the UGC Posts body for a text-only member share.
type ShareRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]ShareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type ShareContent struct {
	ShareCommentary    ShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type ShareCommentary struct {
	Text string `json:"text"`
}

// ShareResponse maps the fields we read from a 201 Created response.
type ShareResponse struct {
	ID string `json:"id"`
}
