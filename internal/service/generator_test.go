package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloggenie-server/internal/domain"
)

func TestGenerator_OfflineIdeasAreDeterministic(t *testing.T) {
	g := NewGenerator(nil, NewMockLogger())
	ctx := context.Background()

	first, err := g.GenerateIdeas(ctx, "gardening", 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	for _, idea := range first {
		text := strings.ToLower(idea.Title + " " + idea.Description)
		assert.Contains(t, text, "gardening")
		assert.Equal(t, "Lifestyle", idea.Category)
		assert.NotEmpty(t, idea.ID)
		assert.GreaterOrEqual(t, idea.EstimatedReadTime, 5)
	}

	second, err := g.GenerateIdeas(ctx, "gardening", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerator_IdeaCountBounds(t *testing.T) {
	g := NewGenerator(nil, NewMockLogger())

	ideas, err := g.GenerateIdeas(context.Background(), "remote work", 50)
	require.NoError(t, err)
	assert.Len(t, ideas, domain.MaxIdeaCount)

	ideas, err = g.GenerateIdeas(context.Background(), "remote work", 0)
	require.NoError(t, err)
	assert.Len(t, ideas, domain.DefaultIdeaCount)

	_, err = g.GenerateIdeas(context.Background(), "   ", 3)
	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestGenerator_FallsBackWhenRemoteFails(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("quota exhausted")}
	g := NewGenerator(completer, NewMockLogger())

	ideas, err := g.GenerateIdeas(context.Background(), "gardening", 3)
	require.NoError(t, err)
	assert.Equal(t, templateIdeas("gardening", 3), ideas)
}

func TestGenerator_BreakerStopsCallingFailingBackend(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("timeout")}
	g := NewGenerator(completer, NewMockLogger())

	for i := 0; i < 6; i++ {
		ideas, err := g.GenerateIdeas(context.Background(), "fitness", 2)
		require.NoError(t, err)
		assert.Len(t, ideas, 2)
	}
	assert.Equal(t, 3, completer.Calls())
}

func TestGenerator_ParsesJSONAndPads(t *testing.T) {
	completer := &scriptedCompleter{response: "```json\n" + `[
		{"title": "Composting 101", "description": "Turn scraps into soil.", "category": "Lifestyle", "tags": ["Compost", "soil"], "estimated_read_time": 7},
		{"title": "Raised Beds", "description": "Build once, grow for years."}
	]` + "\n```"}
	g := NewGenerator(completer, NewMockLogger())

	ideas, err := g.GenerateIdeas(context.Background(), "gardening", 3)
	require.NoError(t, err)
	require.Len(t, ideas, 3)

	assert.Equal(t, "Composting 101", ideas[0].Title)
	assert.Equal(t, []string{"compost", "soil"}, ideas[0].Tags)
	assert.Equal(t, 7, ideas[0].EstimatedReadTime)
	assert.Equal(t, "Raised Beds", ideas[1].Title)
	assert.Equal(t, "Lifestyle", ideas[1].Category)
	assert.Equal(t, templateIdeas("gardening", 3)[0].Title, ideas[2].Title)
}

func TestGenerator_ParsesNumberedList(t *testing.T) {
	completer := &scriptedCompleter{response: "Here you go:\n1. Morning Runs - Why early miles matter\n2. **Hydration Myths**: What science says\n3) Rest Days"}
	g := NewGenerator(completer, NewMockLogger())

	ideas, err := g.GenerateIdeas(context.Background(), "running", 3)
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "Morning Runs", ideas[0].Title)
	assert.Equal(t, "Why early miles matter", ideas[0].Description)
	assert.Equal(t, "Hydration Myths", ideas[1].Title)
	assert.Equal(t, "Rest Days", ideas[2].Title)
	assert.Equal(t, "Health", ideas[2].Category)
}

func TestGenerator_TruncatesSurplusRemoteIdeas(t *testing.T) {
	completer := &scriptedCompleter{response: "- A\n- B\n- C\n- D\n- E"}
	g := NewGenerator(completer, NewMockLogger())

	ideas, err := g.GenerateIdeas(context.Background(), "cooking", 2)
	require.NoError(t, err)
	assert.Len(t, ideas, 2)
}

func TestGenerator_OfflineFullContent(t *testing.T) {
	g := NewGenerator(nil, NewMockLogger())
	idea := templateIdeas("home coffee brewing", 1)[0]

	post, err := g.GenerateFullContent(context.Background(), idea)
	require.NoError(t, err)

	assert.Equal(t, idea.Title, post.Title)
	assert.True(t, strings.HasPrefix(post.Content, "# "+idea.Title))
	words := len(strings.Fields(post.Content))
	assert.Equal(t, int(math.Ceil(float64(words)/200)), post.EstimatedReadTime)
	assert.Equal(t, domain.PostDraft, post.Status)
	assert.Equal(t, idea.Description, post.Excerpt)
}

func TestGenerator_RemoteFullContent(t *testing.T) {
	completer := &scriptedCompleter{response: "# Title\n\nBody text here."}
	g := NewGenerator(completer, NewMockLogger())

	post, err := g.GenerateFullContent(context.Background(), &domain.BlogIdea{Title: "Title", Description: "Summary"})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text here.", post.Content)
	assert.Equal(t, 1, post.EstimatedReadTime)
}

func TestGenerator_OfflineRewrite(t *testing.T) {
	g := NewGenerator(nil, NewMockLogger())
	content := "# Heading\n\nThis is the body.\n\n- a bullet"

	out, err := g.Rewrite(context.Background(), content, domain.RewriteCasual)
	require.NoError(t, err)
	assert.Equal(t, "# Heading\n\nHey there! this is the body.\n\n- a bullet", out)

	out, err = g.Rewrite(context.Background(), content, domain.RewriteAcademic)
	require.NoError(t, err)
	assert.Contains(t, out, "From an academic perspective, this is the body.")

	_, err = g.Rewrite(context.Background(), content, domain.RewriteStyle("pirate"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedRewrite)
}

func TestGenerator_OfflineRewriteNonASCII(t *testing.T) {
	g := NewGenerator(nil, NewMockLogger())
	content := "# Título\n\nÉtudes show café culture matters.\n\nÜBER teams stay as written."

	out, err := g.Rewrite(context.Background(), content, domain.RewriteCasual)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "# Título\n\nHey there! études show café culture matters.\n\nHey there! ÜBER teams stay as written.", out)
}

func TestExcerptOf_TruncatesOnRuneBoundary(t *testing.T) {
	line := strings.Repeat("a", 196) + "ééé tail"

	excerpt := excerptOf("", "# Heading\n\n"+line)
	assert.True(t, utf8.ValidString(excerpt))
	assert.Equal(t, excerptMaxRunes, utf8.RuneCountInString(excerpt))
	assert.True(t, strings.HasSuffix(excerpt, "é..."))

	assert.Equal(t, "short line", excerptOf("", "short line"))
	assert.Equal(t, "given", excerptOf("given", line))
}

func TestInferCategory(t *testing.T) {
	cases := map[string]string{
		"AI in healthcare":      "Technology",
		"yoga for beginners":    "Health",
		"startup fundraising":   "Business",
		"urban gardening":       "Lifestyle",
		"medieval architecture": "General",
	}
	for topic, want := range cases {
		assert.Equal(t, want, inferCategory(topic), topic)
	}
}
