package generator

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/ricirt/devlog-poster/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"upper": strings.ToUpper}).
		ParseFS(promptFS, "prompts/*.tmpl"),
)

type timelinePromptData struct {
	Days        int
	Description string
}

// PostPrompt renders the instruction for one work item. The mapping from
// item to instruction is deterministic.
func PostPrompt(item *domain.WorkItem) (string, error) {
	return render("post.tmpl", item)
}

// TimelinePrompt renders the bootstrap instruction for a project description.
func TimelinePrompt(days int, description ProjectDescription) (string, error) {
	desc, err := description.JSON()
	if err != nil {
		return "", err
	}
	return render("timeline.tmpl", timelinePromptData{Days: days, Description: desc})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
