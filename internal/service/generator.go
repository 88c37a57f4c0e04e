package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"bloggenie-server/internal/domain"
)

const (
	ideaMaxTokens      = 800
	ideaTemperature    = 0.8
	postMaxTokens      = 2000
	postTemperature    = 0.7
	rewriteMaxTokens   = 2000
	rewriteTemperature = 0.5
)

// Generator produces content through a remote TextCompleter and falls back to
// deterministic templates whenever the remote path fails or is not configured.
// A circuit breaker stops calling a failing backend for a while.
type Generator struct {
	completer domain.TextCompleter
	breaker   *gobreaker.CircuitBreaker[string]
	logger    domain.Logger
	now       func() time.Time
}

// NewGenerator builds a generator. A nil completer means offline mode.
func NewGenerator(completer domain.TextCompleter, logger domain.Logger) *Generator {
	g := &Generator{
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "generator",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Generator circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

// Online reports whether a remote completer is configured.
func (g *Generator) Online() bool {
	return g.completer != nil
}

func (g *Generator) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if g.completer == nil {
		return "", domain.ErrGeneratorUnavailable
	}
	return g.breaker.Execute(func() (string, error) {
		return g.completer.Complete(ctx, prompt, maxTokens, temperature)
	})
}

// GenerateIdeas returns exactly count ideas for topic. Remote results are
// padded with template ideas when short and truncated when long.
func (g *Generator) GenerateIdeas(ctx context.Context, topic string, count int) ([]*domain.BlogIdea, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &domain.ValidationError{Field: "topic", Message: "topic is required"}
	}
	if count < domain.MinIdeaCount {
		count = domain.DefaultIdeaCount
	}
	if count > domain.MaxIdeaCount {
		count = domain.MaxIdeaCount
	}

	fallback := templateIdeas(topic, count)
	if g.completer == nil {
		return fallback, nil
	}

	text, err := g.complete(ctx, ideasPrompt(topic, count), ideaMaxTokens, ideaTemperature)
	if err != nil {
		g.logger.Warn("Idea generation fell back to templates", "topic", topic, "error", err)
		return fallback, nil
	}

	ideas := parseIdeas(text, topic)
	if len(ideas) == 0 {
		g.logger.Warn("Idea generation returned nothing usable, using templates", "topic", topic)
		return fallback, nil
	}
	for i := 0; len(ideas) < count; i++ {
		ideas = append(ideas, fallback[i])
	}
	return ideas[:count], nil
}

// GenerateFullContent expands an idea into a full post.
func (g *Generator) GenerateFullContent(ctx context.Context, idea *domain.BlogIdea) (*domain.BlogPost, error) {
	if idea == nil || strings.TrimSpace(idea.Title) == "" {
		return nil, &domain.ValidationError{Field: "idea", Message: "idea title is required"}
	}

	fallback := templatePost(idea, g.now())
	if g.completer == nil {
		return fallback, nil
	}

	text, err := g.complete(ctx, postPrompt(idea), postMaxTokens, postTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		g.logger.Warn("Post generation fell back to templates", "title", idea.Title, "error", err)
		return fallback, nil
	}

	content := strings.TrimSpace(stripCodeFence(text))
	post := *fallback
	post.ID = uuid.NewString()
	post.Content = content
	post.Excerpt = excerptOf(idea.Description, content)
	post.EstimatedReadTime = readTimeMinutes(content)
	return &post, nil
}

// Rewrite restyles content. Unknown styles are rejected.
func (g *Generator) Rewrite(ctx context.Context, content string, style domain.RewriteStyle) (string, error) {
	if _, ok := rewritePrefixes[style]; !ok {
		return "", domain.ErrUnsupportedRewrite
	}
	if strings.TrimSpace(content) == "" {
		return "", &domain.ValidationError{Field: "content", Message: "content is required"}
	}
	if g.completer == nil {
		return templateRewrite(content, style), nil
	}

	text, err := g.complete(ctx, rewritePrompt(content, style), rewriteMaxTokens, rewriteTemperature)
	if err != nil || strings.TrimSpace(text) == "" {
		g.logger.Warn("Rewrite fell back to templates", "style", string(style), "error", err)
		return templateRewrite(content, style), nil
	}
	return strings.TrimSpace(stripCodeFence(text)), nil
}

func ideasPrompt(topic string, count int) string {
	return fmt.Sprintf(`Generate %d creative, engaging blog post ideas about "%s".
Respond with a JSON array only. Each element must have the fields:
"title" (string), "description" (one or two sentences), "category" (string),
"tags" (array of 3-5 lowercase strings) and "estimated_read_time" (minutes, integer).`, count, topic)
}

func postPrompt(idea *domain.BlogIdea) string {
	return fmt.Sprintf(`Write a complete, well-structured blog post in Markdown.
Title: %s
Summary: %s
Category: %s
Use an H1 title, an introduction, three to five H2 sections with practical advice, and a conclusion.
Aim for 800 to 1200 words. Return only the Markdown.`, idea.Title, idea.Description, idea.Category)
}

var rewriteInstructions = map[domain.RewriteStyle]string{
	domain.RewriteProfessional: "a polished, professional tone suitable for a business audience",
	domain.RewriteCasual:       "a friendly, casual and conversational tone",
	domain.RewriteAcademic:     "a formal academic tone with precise language",
}

func rewritePrompt(content string, style domain.RewriteStyle) string {
	return fmt.Sprintf("Rewrite the following Markdown blog post in %s. Keep the structure and headings. Return only the Markdown.\n\n%s",
		rewriteInstructions[style], content)
}

var (
	listItemPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+)$`)
	fencePattern    = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\n(.*?)\\n?```\\s*$")
)

func stripCodeFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// parseIdeas reads a JSON array of ideas, falling back to a numbered or
// bulleted list of "Title - description" lines.
func parseIdeas(text, topic string) []*domain.BlogIdea {
	text = stripCodeFence(text)
	if ideas := parseJSONIdeas(text, topic); len(ideas) > 0 {
		return ideas
	}

	var ideas []*domain.BlogIdea
	for _, line := range strings.Split(text, "\n") {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		title, description := item, ""
		for _, sep := range []string{" - ", ": ", " – "} {
			if i := strings.Index(item, sep); i > 0 {
				title, description = item[:i], item[i+len(sep):]
				break
			}
		}
		ideas = append(ideas, newParsedIdea(topic, strings.Trim(title, "* "), description, "", nil, 0))
	}
	return ideas
}

func parseJSONIdeas(text, topic string) []*domain.BlogIdea {
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}

	ideas := make([]*domain.BlogIdea, 0, len(raw))
	for _, r := range raw {
		title, _ := r["title"].(string)
		if strings.TrimSpace(title) == "" {
			continue
		}
		description, _ := r["description"].(string)
		category, _ := r["category"].(string)

		var tags []string
		if list, ok := r["tags"].([]interface{}); ok {
			for _, t := range list {
				if s, ok := t.(string); ok && s != "" {
					tags = append(tags, strings.ToLower(s))
				}
			}
		}

		readTime := 0
		for _, key := range []string{"estimated_read_time", "estimatedReadTime", "read_time"} {
			if v, ok := r[key].(float64); ok {
				readTime = int(v)
				break
			}
		}
		ideas = append(ideas, newParsedIdea(topic, title, description, category, tags, readTime))
	}
	return ideas
}

func newParsedIdea(topic, title, description, category string, tags []string, readTime int) *domain.BlogIdea {
	if category == "" {
		category = inferCategory(topic)
	}
	if len(tags) == 0 {
		tags = []string{strings.ToLower(topic), strings.ToLower(category)}
	}
	if readTime <= 0 || readTime > 60 {
		readTime = 6
	}
	return &domain.BlogIdea{
		ID:                uuid.NewString(),
		Topic:             topic,
		Title:             strings.TrimSpace(title),
		Description:       strings.TrimSpace(description),
		Category:          category,
		Tags:              tags,
		EstimatedReadTime: readTime,
	}
}
