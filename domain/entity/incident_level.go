package entity

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// impactとurgencyで共通の選択肢
var LevelOptions = []string{
	"1 - High",
	"2 - Medium",
	"3 - Low",
}

// ParseLevel は先頭の数値を返す。"1 - High" も "1" も1になる
func ParseLevel(v string) (int, error) {
	v = strings.TrimSpace(v)
	end := strings.IndexFunc(v, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(v)
	}
	if end == 0 {
		return 0, fmt.Errorf("level %q has no leading number", v)
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, fmt.Errorf("level %q: %w", v, err)
	}
	return n, nil
}

// LevelLabel はサーバーの "2" のような値を選択肢のラベルに直す。該当しなければそのまま返す
func LevelLabel(v string) string {
	n, err := ParseLevel(v)
	if err != nil || strings.TrimSpace(v) != strconv.Itoa(n) {
		return v
	}
	for _, o := range LevelOptions {
		if on, _ := ParseLevel(o); on == n {
			return o
		}
	}
	return v
}
