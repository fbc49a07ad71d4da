// Package services – ContentBuilder
//
// This file builds locale- and event-type-specific notification copy. Locale
// selection is per-recipient: callers group recipients by their stored
// membership locale (GroupByLocale) and build one title/body pair per group,
// so two recipients in different locales receive differently worded copies of
// the same event within the same dispatch.
package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// NotificationKind selects the template family used for a push.
type NotificationKind string

const (
	KindMessage          NotificationKind = "message"
	KindMention          NotificationKind = "mention"
	KindPrayerAnswered   NotificationKind = "prayer_answered"
	KindJournalSubmitted NotificationKind = "journal_submitted"
)

// maxBodyRunes caps plain-text message bodies; longer content is truncated
// with a trailing ellipsis.
const maxBodyRunes = 100

// Content is a built title/body pair ready for dispatch.
type Content struct {
	Title string
	Body  string
}

// ContentInput describes the event being rendered.
type ContentInput struct {
	Kind       NotificationKind
	Category   domain.ContentType // message body category (text/image/...)
	Text       string             // message content or prayer card title
	SenderName string             // display name; empty falls back per locale
}

// catalog holds one locale's template strings.
type catalog struct {
	someone        string
	mentionTitle   string // fmt: sender
	attachmentBody string
	prayerCardBody string
	systemBody     string

	prayerAnsweredTitle string
	prayerAnsweredBody  string // fmt: card title

	journalTitle string
	journalBody  string // fmt: author
}

// catalogs keys are BCP 47 base languages. Adding a locale means adding an
// entry here and its tag to the builder's matcher.
var catalogs = map[string]catalog{
	"en": {
		someone:             "Someone",
		mentionTitle:        "%s mentioned you",
		attachmentBody:      "Sent an attachment",
		prayerCardBody:      "Shared a prayer card",
		systemBody:          "New activity in your group",
		prayerAnsweredTitle: "Prayer answered",
		prayerAnsweredBody:  "\"%s\" has been answered",
		journalTitle:        "New pastoral journal",
		journalBody:         "%s submitted a journal entry",
	},
	"ko": {
		someone:             "누군가",
		mentionTitle:        "%s님이 회원님을 언급했습니다",
		attachmentBody:      "첨부파일을 보냈습니다",
		prayerCardBody:      "기도카드를 공유했습니다",
		systemBody:          "그룹에 새로운 활동이 있습니다",
		prayerAnsweredTitle: "기도 응답",
		prayerAnsweredBody:  "\"%s\" 기도에 응답이 있었습니다",
		journalTitle:        "새 목양일지",
		journalBody:         "%s님이 목양일지를 제출했습니다",
	},
}

// ContentBuilder renders notification copy for a recipient locale.
// It is stateless and safe for concurrent use.
type ContentBuilder struct {
	matcher       language.Matcher
	supported     []string
	defaultLocale string
}

// NewContentBuilder constructs a builder. defaultLocale is used when a
// recipient locale is missing or matches no supported catalog; when it is
// itself unsupported, English is the last resort.
func NewContentBuilder(defaultLocale string) *ContentBuilder {
	supported := []string{"en", "ko"}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
	}
	if _, ok := catalogs[defaultLocale]; !ok {
		defaultLocale = "en"
	}
	return &ContentBuilder{
		matcher:       language.NewMatcher(tags),
		supported:     supported,
		defaultLocale: defaultLocale,
	}
}

// Normalize maps an arbitrary stored locale string ("ko-KR", "en_US", "")
// onto a supported catalog key.
func (b *ContentBuilder) Normalize(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return b.defaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return b.defaultLocale
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.defaultLocale
	}
	return b.supported[idx]
}

// Build renders the title/body pair for one event in one locale.
func (b *ContentBuilder) Build(in ContentInput, locale string) Content {
	cat := catalogs[b.Normalize(locale)]

	sender := strings.TrimSpace(in.SenderName)
	if sender == "" {
		sender = cat.someone
	}

	switch in.Kind {
	case KindPrayerAnswered:
		return Content{
			Title: cat.prayerAnsweredTitle,
			Body:  fmt.Sprintf(cat.prayerAnsweredBody, truncateRunes(in.Text, maxBodyRunes)),
		}
	case KindJournalSubmitted:
		return Content{
			Title: cat.journalTitle,
			Body:  fmt.Sprintf(cat.journalBody, sender),
		}
	}

	// Message and mention share the body; only the title differs.
	var body string
	switch in.Category {
	case domain.ContentImage, domain.ContentFile:
		body = cat.attachmentBody
	case domain.ContentPrayerCard:
		body = cat.prayerCardBody
	case domain.ContentSystem:
		body = cat.systemBody
	default:
		body = truncateRunes(in.Text, maxBodyRunes)
	}

	title := sender
	if in.Kind == KindMention {
		title = fmt.Sprintf(cat.mentionTitle, sender)
	}
	return Content{Title: title, Body: body}
}

// GroupByLocale buckets recipients by their normalized stored locale so that
// content is built once per locale group rather than once per recipient.
func (b *ContentBuilder) GroupByLocale(members []domain.Membership) map[string][]domain.Membership {
	out := make(map[string][]domain.Membership)
	for _, m := range members {
		loc := b.Normalize(m.Locale)
		out[loc] = append(out[loc], m)
	}
	return out
}

// truncateRunes clips s to max runes, appending an ellipsis when truncated.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
