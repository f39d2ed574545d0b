package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/movie"
)

// detailMarkdown lays out a detail page as markdown for glamour.
func detailMarkdown(d *movie.Detail, cfg *config.Config, bookmarked bool) string {
	var b strings.Builder

	title := d.Title
	if bookmarked {
		title += " ★"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	var meta []string
	if a := d.Attribution(); a != "" {
		meta = append(meta, a)
	}
	if !d.PublishedAt.IsZero() {
		meta = append(meta, d.PublishedAt.Format("Jan 2, 2006"))
	} else if d.Year != "" {
		meta = append(meta, d.Year)
	}
	if rt := formatRuntime(d.Duration); rt != "" {
		meta = append(meta, rt)
	}
	if d.Language != "" {
		meta = append(meta, strings.ToUpper(d.Language))
	}
	meta = append(meta, string(d.Source))
	fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " • "))

	var stats []string
	if d.ViewCount > 0 {
		stats = append(stats, fmt.Sprintf("**Views:** %s", formatCount(d.ViewCount)))
	}
	if d.LikeCount > 0 {
		stats = append(stats, fmt.Sprintf("**Likes:** %s", formatCount(d.LikeCount)))
	}
	if d.CommentCount > 0 {
		stats = append(stats, fmt.Sprintf("**Comments:** %s", formatCount(d.CommentCount)))
	}
	if d.Rating > 0 {
		stats = append(stats, fmt.Sprintf("**Rating:** %.1f/10", d.Rating))
	}
	if len(stats) > 0 {
		b.WriteString(strings.Join(stats, " • ") + "\n\n")
	}
	if len(d.Genres) > 0 {
		fmt.Fprintf(&b, "**Genres:** %s\n\n", strings.Join(d.Genres, ", "))
	}

	if d.Playable() {
		fmt.Fprintf(&b, "**Watch:** %s\n\n", d.WatchURL)
		fmt.Fprintf(&b, "**Embed:** %s\n\n", d.EmbedURL)
	} else {
		b.WriteString("*No playable video for this title.*\n\n")
	}
	fmt.Fprintf(&b, "**Image:** %s\n\n", d.ImageURL(cfg.API.TMDB.ImageBaseURL))

	b.WriteString("---\n\n")

	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		desc = "*No description.*"
	}
	b.WriteString(truncateEnd(desc, cfg.UI.Detail.MaxDescriptionLength))
	b.WriteString("\n\n")

	if len(d.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(d.Tags, ", "))
	}

	if len(d.Uploads) > 0 {
		fmt.Fprintf(&b, "## More from %s\n\n", d.Attribution())
		for _, u := range d.Uploads {
			line := u.Title
			if u.Year != "" {
				line += " (" + u.Year + ")"
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	minWidth := a.config.UI.Detail.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// renderDetail renders the loaded detail into the viewport.
func (a *App) renderDetail() {
	if a.detail == nil {
		return
	}
	md := detailMarkdown(a.detail, a.config, a.bookmarks[a.detail.Key()])

	content := md
	if r, err := a.getRenderer(); err == nil {
		if rendered, err := r.Render(md); err == nil {
			content = rendered
		}
	}
	a.viewport.SetContent(content)
}

// renderDetailView draws the detail page for the current phase.
func (a *App) renderDetailView(height int) string {
	switch a.detailState {
	case detailLoading:
		return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted(MsgLoadingDetail))

	case detailNotFound:
		id := ""
		if a.current != nil {
			id = a.current.ID
		}
		return renderCentered(a.width, height, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render(MsgNotFound),
			"",
			renderMuted(fmt.Sprintf("Nothing matches id %q.", truncateEnd(id, 40))),
			"",
			renderHelp("esc: back"),
		))

	case detailFailed:
		return renderCentered(a.width, height, lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render(MsgDetailFailed),
			"",
			renderHelp(a.keyHandler.key(a.config.Keys.Bindings.Retry)+": retry • esc: back"),
		))

	default:
		return a.viewport.View()
	}
}

// RenderDetail renders a detail page for non-interactive output.
func RenderDetail(d *movie.Detail, cfg *config.Config, width int) (string, error) {
	if width <= 0 {
		width = cfg.UI.Detail.WordWrapMaxWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return r.Render(detailMarkdown(d, cfg, false))
}
