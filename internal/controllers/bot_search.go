package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediabot/internal/errs"
	"mediabot/internal/menu"
	"mediabot/internal/models"
	"mediabot/internal/overseerr"
	"mediabot/internal/providers"
	"mediabot/internal/services"
)

const maxCaption = 1024

func (bc *BotController) search(ctx context.Context, t *turn, query string) {
	if strings.TrimSpace(query) == "" {
		bc.send(ctx, t, msgSearchUsage, nil)
		return
	}
	items, err := bc.media.Search(ctx, query)
	if errors.Is(err, errs.ErrNotFound) {
		bc.send(ctx, t, fmt.Sprintf("No results found for %q.", query), nil)
		return
	}
	if err != nil {
		bc.fail(ctx, t, "search", err)
		return
	}

	t.conv.Results = items
	t.conv.Offset = 0
	t.conv.Selected = nil
	t.conv.MenuMessageID = bc.send(ctx, t, msgSelectResult, resultsKeyboard(items, 0))
}

func resultsKeyboard(items []models.SearchResultItem, offset int) menu.Keyboard {
	page := menu.Render(items, offset, menu.TitlePageSize)
	return menu.PagedKeyboard(page, menu.TitlePageSize, menu.TitleNav, func(i int, item models.SearchResultItem) menu.KeyButton {
		return menu.KeyButton{Text: item.Label(), Callback: menu.ButtonInt(menu.ActionSelect, i)}
	})
}

// pageResults serves both more_<offset> and back_<offset>.
func (bc *BotController) pageResults(ctx context.Context, t *turn, cb menu.Callback) {
	offset, err := cb.Int()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	if len(t.conv.Results) == 0 {
		t.answer = msgNoSearch
		return
	}
	if offset >= len(t.conv.Results) {
		t.answer = msgOutOfRange
		return
	}
	t.conv.Offset = offset
	t.conv.MenuMessageID = bc.replace(ctx, t, msgSelectResult, resultsKeyboard(t.conv.Results, offset))
}

func (bc *BotController) showResults(ctx context.Context, t *turn) {
	if len(t.conv.Results) == 0 {
		t.answer = msgNoSearch
		return
	}
	t.conv.Selected = nil
	t.conv.MenuMessageID = bc.replace(ctx, t, msgSelectResult, resultsKeyboard(t.conv.Results, t.conv.Offset))
}

func (bc *BotController) selectResult(ctx context.Context, t *turn, cb menu.Callback) {
	i, err := cb.Int()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	if len(t.conv.Results) == 0 {
		t.answer = msgNoSearch
		return
	}
	if i >= len(t.conv.Results) {
		bc.logger.Warnf(providers.TypeBot, "User %d selected %d of %d results", t.userID(), i, len(t.conv.Results))
		t.answer = msgOutOfRange
		return
	}

	item := t.conv.Results[i]
	t.conv.Selected = &item
	text, kb := bc.detail(item)
	if item.PosterPath != "" && bc.posterBase != "" {
		id, err := bc.messenger.SendPhoto(ctx, t.ev.Chat, bc.posterBase+item.PosterPath, truncate(text, maxCaption), kb)
		if err == nil {
			bc.deleteBestEffort(ctx, t)
			t.conv.MenuMessageID = id
			return
		}
		bc.logger.Debugf(providers.TypeBot, "Poster of %d not sent: %s", item.CatalogID, err)
	}
	t.conv.MenuMessageID = bc.replace(ctx, t, text, kb)
}

// detail renders a title with the actions its availability allows.
func (bc *BotController) detail(item models.SearchResultItem) (string, menu.Keyboard) {
	var b strings.Builder
	b.WriteString(item.Label())
	fmt.Fprintf(&b, "\nType: %s", item.Kind)
	fmt.Fprintf(&b, "\nStatus: %s", item.Status)
	if bc.media.Enable4K() {
		fmt.Fprintf(&b, "\n4K status: %s", item.Status4K)
	}
	if item.Overview != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Overview)
	}

	var kb menu.Keyboard
	hd := item.Status.Requestable()
	uhd := bc.media.Enable4K() && item.Status4K.Requestable()
	var row []menu.KeyButton
	if hd {
		row = append(row, menu.KeyButton{Text: "📥 1080p", Callback: menu.ButtonArg(menu.ActionConfirm, string(models.Quality1080p))})
	}
	if uhd {
		row = append(row, menu.KeyButton{Text: "📥 4K", Callback: menu.ButtonArg(menu.ActionConfirm, string(models.Quality4K))})
	}
	if hd && uhd {
		row = append(row, menu.KeyButton{Text: "📥 Both", Callback: menu.ButtonArg(menu.ActionConfirm, string(models.QualityBoth))})
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	if item.MediaID != 0 {
		kb = append(kb, []menu.KeyButton{{Text: "🛠 Report a problem", Callback: menu.Button(menu.ActionReport)}})
	}
	kb = append(kb, []menu.KeyButton{{Text: "⬅️ Results", Callback: menu.Button(menu.ActionResults)}})
	kb = append(kb, menu.CancelRow())
	return b.String(), kb
}

func (bc *BotController) confirm(ctx context.Context, t *turn, cb menu.Callback) {
	quality := models.Quality(cb.Arg)
	switch quality {
	case models.Quality1080p:
	case models.Quality4K, models.QualityBoth:
		if !bc.media.Enable4K() {
			t.answer = msgInvalidAction
			return
		}
	default:
		bc.logger.Warnf(providers.TypeBot, "User %d: unknown quality %q", t.userID(), cb.Arg)
		t.answer = msgInvalidAction
		return
	}
	if t.conv.Selected == nil {
		t.answer = msgNoSearch
		return
	}

	item := *t.conv.Selected
	outcomes, err := bc.media.Request(ctx, t.userID(), item, quality)
	if err != nil {
		bc.fail(ctx, t, "request", err)
		return
	}
	t.conv.Reset()
	t.conv.Selected = nil
	bc.replace(ctx, t, requestSummary(item, outcomes), nil)
}

func requestSummary(item models.SearchResultItem, outcomes []services.TierOutcome) string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		tier := ""
		if o.Is4K {
			tier = " in 4K"
		}
		if o.Err == nil {
			lines = append(lines, fmt.Sprintf("✅ Request for '%s'%s has been sent successfully!", item.Label(), tier))
			continue
		}
		reason := "Please try again later."
		if overseerr.StatusOf(o.Err) > 0 {
			reason = overseerr.UpstreamMessage(o.Err)
		}
		lines = append(lines, fmt.Sprintf("❌ Failed to request '%s'%s: %s", item.Label(), tier, reason))
	}
	return strings.Join(lines, "\n")
}

func (bc *BotController) report(ctx context.Context, t *turn) {
	if t.conv.Selected == nil {
		t.answer = msgNoSearch
		return
	}
	if t.conv.Selected.MediaID == 0 {
		t.answer = msgNotRequested
		return
	}
	kb := menu.Keyboard{}
	for it := models.IssueVideo; it <= models.IssueOther; it++ {
		kb = append(kb, []menu.KeyButton{{Text: it.String(), Callback: menu.ButtonInt(menu.ActionIssue, int(it))}})
	}
	kb = append(kb, menu.CancelRow())
	bc.replace(ctx, t, msgPickIssueType, kb)
}

func (bc *BotController) issueType(ctx context.Context, t *turn, cb menu.Callback) {
	n, err := cb.Int()
	if err != nil || !models.IssueType(n).Valid() {
		t.answer = msgInvalidAction
		return
	}
	if t.conv.Selected == nil || t.conv.Selected.MediaID == 0 {
		t.answer = msgNoSearch
		return
	}
	t.conv.BeginIssue(models.IssueType(n), *t.conv.Selected)
	bc.replace(ctx, t, msgDescribeIssue, menu.Keyboard{menu.CancelRow()})
}

// issueStep consumes the description and files the issue.
func (bc *BotController) issueStep(ctx context.Context, t *turn) {
	if t.conv.IssueTarget == nil {
		t.conv.Reset()
		bc.send(ctx, t, msgNoSearch, nil)
		return
	}
	target, issueType := *t.conv.IssueTarget, t.conv.IssueType
	res, err := bc.media.ReportIssue(ctx, t.userID(), target, issueType, t.ev.Text)
	if errors.Is(err, errs.ErrInvalidInput) {
		bc.send(ctx, t, msgDescribeIssue, menu.Keyboard{menu.CancelRow()})
		return
	}
	if err != nil {
		bc.fail(ctx, t, "report issue", err)
		return
	}
	t.conv.Reset()
	bc.send(ctx, t, fmt.Sprintf("✅ %s issue #%d reported for '%s'. Thank you!", issueType, res.ID, target.Label()), nil)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
