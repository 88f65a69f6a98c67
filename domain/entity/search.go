package entity

import "strings"

// Matches は説明か番号にqueryを含むかを大文字小文字を区別せずに判定する。空のqueryはすべてに一致する
func (i Incident) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(i.ShortDescription), q) ||
		strings.Contains(strings.ToLower(i.Number), q)
}

// FilterIncidents はsrcを変更せずに一致したものを返す
func FilterIncidents(src []Incident, query string) []Incident {
	ret := make([]Incident, 0, len(src))
	for _, inc := range src {
		if inc.Matches(query) {
			ret = append(ret, inc)
		}
	}
	return ret
}
