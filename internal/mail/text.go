package mail

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// blockElements は前後で改行を入れる要素。
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "h1": true, "h2": true, "h3": true,
	"li": true, "tr": true, "table": true,
}

// HTMLToText はHTML本文からテキスト版の本文を生成する。
// リンクは "テキスト (URL)" の形で残し、head、script、styleの中身は捨てる。
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))

	var b strings.Builder
	var href string
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidyLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "head", "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "a":
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						href = attr.Val
					}
				}
			}
			if blockElements[tok.Data] {
				b.WriteString("\n")
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "head", "script", "style":
				if skip > 0 {
					skip--
				}
			case "a":
				if href != "" {
					b.WriteString(" (" + href + ")")
					href = ""
				}
			}
			if blockElements[tok.Data] {
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.WriteString(collapseSpace(string(z.Text())))
			}
		}
	}
}

// collapseSpace は改行を含む連続した空白を1つの空白にまとめる。前後の空白は1つだけ残す。
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

// tidyLines は行ごとに空白を整え、空行を取り除く。
func tidyLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
