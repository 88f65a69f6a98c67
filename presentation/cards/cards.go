package cards

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pyama86/snowpanel/domain/entity"
)

// short_descriptionは自由入力なのでタグを除いてから表示する
var policy = bluemonday.StrictPolicy()

func Sanitize(s string) string {
	// StrictPolicyはエスケープも行うため、端末表示用に戻す
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Lines はカードの本文を項目ごとに1行で返す
func Lines(inc entity.Incident) []string {
	return []string{
		fmt.Sprintf("#%s", inc.Number),
		fmt.Sprintf("Description: %s", Sanitize(inc.ShortDescription)),
		fmt.Sprintf("Priority: %s", inc.Priority),
	}
}

// Table はサブコマンド用に表形式で書き出す
func Table(w io.Writer, incidents []entity.Incident) error {
	if len(incidents) == 0 {
		_, err := fmt.Fprintln(w, "No incidents.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NUMBER", "SYS_ID", "IMPACT", "URGENCY", "PRIORITY", "DESCRIPTION")
	for _, inc := range incidents {
		t.Row(
			inc.Number,
			inc.ID,
			entity.LevelLabel(inc.Impact),
			entity.LevelLabel(inc.Urgency),
			inc.Priority,
			Sanitize(inc.ShortDescription),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
