package tui

import "strings"

// Page はパスで選ぶ画面
type Page int

const (
	PageHome Page = iota
	PageAbout
	PageNotFound
)

// notFoundPath は「404 Test」の遷移先
const notFoundPath = "/does-not-exist"

// Route はパスを画面に対応させる。不明なパスはnot found
func Route(path string) Page {
	switch strings.TrimSuffix(path, "/") {
	case "":
		return PageHome
	case "/about":
		return PageAbout
	}
	return PageNotFound
}

func (p Page) Path() string {
	switch p {
	case PageHome:
		return "/"
	case PageAbout:
		return "/about"
	}
	return notFoundPath
}
