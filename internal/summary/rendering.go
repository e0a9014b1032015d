package summary

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
)

const windowDateLayout = "01/02"

var summaryTemplate = template.Must(template.New("summary").
	Funcs(template.FuncMap{
		"rank":     func(i int) int { return i + 1 },
		"duration": ledger.FormatDuration,
	}).
	Parse(`{{ .From }}～{{ .To }} 集計結果
{{ range $i, $t := .Totals }}{{ if $i }}
{{ end }}{{ rank $i }}. {{ $t.Name }} 合計勉強時間 {{ duration $t.Elapsed }}{{ end }}`))

func Render(w Window, totals []Total) (string, error) {
	buff := &bytes.Buffer{}
	err := summaryTemplate.Execute(buff, struct {
		From   string
		To     string
		Totals []Total
	}{
		From:   w.Start.Format(windowDateLayout),
		To:     w.End.Format(windowDateLayout),
		Totals: totals,
	})
	if err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buff.String(), nil
}
