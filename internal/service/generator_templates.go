package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bloggenie-server/internal/domain"
)

// ideaNamespace seeds deterministic ids for template ideas and posts.
var ideaNamespace = uuid.MustParse("6f1d3c2a-9b1e-4c55-8a3f-2d7e8b9c0a14")

type ideaTemplate struct {
	title       string
	description string
	tag         string
}

// %[1]s is the title-cased topic, %[2]s the lower-cased topic.
var ideaTemplates = []ideaTemplate{
	{"The Complete Beginner's Guide to %[1]s", "Everything you need to know to get started with %[2]s, from first steps to lasting habits.", "beginners"},
	{"10 %[1]s Mistakes Everyone Makes (and How to Avoid Them)", "Common pitfalls in %[2]s and practical fixes you can apply today.", "mistakes"},
	{"Where %[1]s Is Heading Next", "The trends, predictions and emerging ideas shaping the future of %[2]s.", "trends"},
	{"%[1]s on a Budget: Getting Results Without Overspending", "Smart, low-cost strategies for making the most of %[2]s.", "budget"},
	{"The Science Behind %[1]s: What Really Works", "A research-backed look at what actually moves the needle in %[2]s.", "research"},
	{"7 Daily Habits That Will Transform Your %[1]s", "Small, repeatable routines that compound into big wins for %[2]s.", "habits"},
	{"%[1]s Myths You Should Stop Believing", "Separating fact from fiction in %[2]s so you can focus on what matters.", "myths"},
	{"Lessons Learned From Years of %[1]s", "Hard-won insights from people who have mastered %[2]s.", "interview"},
	{"A 30-Day %[1]s Plan You Can Start Today", "A week-by-week roadmap to measurable progress in %[2]s.", "planning"},
	{"The Best Tools and Resources for %[1]s", "A curated list of apps, books and communities for anyone serious about %[2]s.", "tools"},
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Technology", []string{"ai", "tech", "software", "code", "coding", "programming", "data", "app", "web", "cloud", "crypto", "security"}},
	{"Health", []string{"fitness", "health", "diet", "nutrition", "workout", "yoga", "mental", "sleep", "running", "wellness"}},
	{"Business", []string{"business", "marketing", "startup", "finance", "money", "sales", "investing", "career", "leadership"}},
	{"Productivity", []string{"productivity", "remote", "work", "time", "focus", "habit", "planning", "study"}},
	{"Lifestyle", []string{"travel", "food", "garden", "gardening", "home", "fashion", "parenting", "cooking", "photography", "pets"}},
}

const defaultCategory = "General"

// inferCategory picks the first category with a keyword among the topic's words.
func inferCategory(topic string) string {
	words := strings.FieldsFunc(strings.ToLower(topic), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			for _, w := range words {
				if w == kw {
					return c.category
				}
			}
		}
	}
	return defaultCategory
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// templateIdeas is a pure function of topic and count.
func templateIdeas(topic string, count int) []*domain.BlogIdea {
	topic = strings.Join(strings.Fields(topic), " ")
	lower := strings.ToLower(topic)
	title := titleCase(lower)
	category := inferCategory(topic)

	if count > len(ideaTemplates) {
		count = len(ideaTemplates)
	}
	ideas := make([]*domain.BlogIdea, 0, count)
	for i := 0; i < count; i++ {
		tpl := ideaTemplates[i]
		ideas = append(ideas, &domain.BlogIdea{
			ID:                uuid.NewSHA1(ideaNamespace, []byte(lower+"#"+strconv.Itoa(i))).String(),
			Topic:             topic,
			Title:             fmt.Sprintf(tpl.title, title, lower),
			Description:       fmt.Sprintf(tpl.description, title, lower),
			Category:          category,
			Tags:              []string{lower, strings.ToLower(category), tpl.tag},
			EstimatedReadTime: 5 + (i*3+len(lower))%5,
		})
	}
	return ideas
}

// templatePost expands an idea into a structured markdown article.
func templatePost(idea *domain.BlogIdea, now time.Time) *domain.BlogPost {
	subject := idea.Topic
	if subject == "" {
		subject = idea.Title
	}
	subject = strings.ToLower(subject)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", idea.Title)
	fmt.Fprintf(&b, "%s\n\n", idea.Description)
	b.WriteString("## Introduction\n\n")
	fmt.Fprintf(&b, "Whether you are just discovering %s or have been at it for years, there is always something new to learn. "+
		"This guide walks through the ideas that matter most and shows how to put them into practice.\n\n", subject)
	b.WriteString("## Why It Matters\n\n")
	fmt.Fprintf(&b, "Getting %s right saves time, reduces frustration and builds momentum. "+
		"Small improvements add up, and the people who see the best results are the ones who stay consistent.\n\n", subject)
	b.WriteString("## Key Strategies\n\n")
	fmt.Fprintf(&b, "1. **Start with the fundamentals.** Learn the core principles of %s before chasing advanced techniques.\n", subject)
	b.WriteString("2. **Set measurable goals.** Decide what progress looks like and review it every week.\n")
	b.WriteString("3. **Build a routine.** A simple plan you follow beats a perfect plan you abandon.\n")
	b.WriteString("4. **Learn from others.** Communities, mentors and case studies shorten the learning curve.\n")
	b.WriteString("5. **Iterate.** Keep what works, drop what does not and adjust as you grow.\n\n")
	b.WriteString("## Common Pitfalls\n\n")
	fmt.Fprintf(&b, "- Trying to change everything at once instead of focusing on one area of %s.\n", subject)
	b.WriteString("- Copying someone else's approach without adapting it to your situation.\n")
	b.WriteString("- Giving up before the results have had time to show.\n\n")
	b.WriteString("## Conclusion\n\n")
	fmt.Fprintf(&b, "%s rewards patience and curiosity. Pick one strategy from this article, apply it this week and build from there.\n",
		titleCase(subject))

	content := b.String()
	return &domain.BlogPost{
		ID:                uuid.NewSHA1(ideaNamespace, []byte("post#"+idea.Title)).String(),
		IdeaID:            idea.ID,
		Title:             idea.Title,
		Content:           content,
		Excerpt:           excerptOf(idea.Description, content),
		Category:          idea.Category,
		Tags:              append([]string(nil), idea.Tags...),
		EstimatedReadTime: readTimeMinutes(content),
		Status:            domain.PostDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

var rewritePrefixes = map[domain.RewriteStyle]string{
	domain.RewriteProfessional: "In a professional context, ",
	domain.RewriteCasual:       "Hey there! ",
	domain.RewriteAcademic:     "From an academic perspective, ",
}

// templateRewrite restyles content by prefixing each paragraph that is not a heading.
func templateRewrite(content string, style domain.RewriteStyle) string {
	prefix := rewritePrefixes[style]
	paragraphs := strings.Split(content, "\n\n")
	for i, p := range paragraphs {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") || startsWithDigit(trimmed) {
			continue
		}
		if strings.HasPrefix(trimmed, prefix) {
			continue
		}
		paragraphs[i] = prefix + lowerFirst(trimmed)
	}
	return strings.Join(paragraphs, "\n\n")
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(first)) + s[size:]
}

// readTimeMinutes assumes 200 words per minute and never returns less than one.
func readTimeMinutes(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / 200))
	if minutes < 1 {
		return 1
	}
	return minutes
}

const excerptMaxRunes = 200

// truncateRunes cuts s to at most max runes, ending in "..." when shortened.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

func excerptOf(description, content string) string {
	if description != "" {
		return description
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return truncateRunes(line, excerptMaxRunes)
		}
	}
	return ""
}
