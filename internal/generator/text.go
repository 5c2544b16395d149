package generator

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
)

// TwitterMaxRunes X/Twitter 单条正文长度上限
const TwitterMaxRunes = 280

const ellipsis = "…"

// NormalizeHashtags 规范化话题标签：去掉 #、去掉空白、保序去重、丢弃空值
func NormalizeHashtags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := strings.TrimLeft(strings.TrimSpace(raw), "#")
		tag = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}
	return result
}

// NormalizePlatforms 规范化平台列表：小写、保序去重、丢弃空值（不校验是否支持）
func NormalizePlatforms(platforms []string) []string {
	result := make([]string, 0, len(platforms))
	seen := make(map[string]struct{}, len(platforms))
	for _, raw := range platforms {
		platform := strings.ToLower(strings.TrimSpace(raw))
		if platform == "" {
			continue
		}
		if _, ok := seen[platform]; ok {
			continue
		}
		seen[platform] = struct{}{}
		result = append(result, platform)
	}
	return result
}

// Tagify 将名称转换为话题标签，如 "JD Cymru South" -> "JDCymruSouth"
func Tagify(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slugify 将名称转换为小写短横线形式，如 "JD Cymru South" -> "jd-cymru-south"
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// Ordinal 序数词：1st 2nd 3rd 11th 12th 13th 21st
func Ordinal(n int) string {
	suffix := "th"
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs%100 < 11 || abs%100 > 13 {
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// SignedInt 带符号整数，正数带 +
func SignedInt(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func formatForm(form string) string {
	letters := make([]string, 0, len(form))
	for _, r := range strings.ToUpper(form) {
		if unicode.IsSpace(r) || r == ',' || r == '-' {
			continue
		}
		letters = append(letters, string(r))
	}
	return strings.Join(letters, " ")
}

// Render 生成某平台的最终正文：正文 + 空行 + 话题标签；
// twitter 超长时先逐个去掉末尾标签，仍超长则按字符截断正文并加省略号
func Render(text string, hashtags []string, platform string) string {
	text = strings.TrimSpace(text)
	tags := NormalizeHashtags(hashtags)
	if platform != constants.PlatformTwitter {
		return joinBody(text, tags)
	}

	for n := len(tags); n >= 0; n-- {
		body := joinBody(text, tags[:n])
		if utf8.RuneCountInString(body) <= TwitterMaxRunes {
			return body
		}
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:TwitterMaxRunes-1])) + ellipsis
}

func joinBody(text string, tags []string) string {
	if len(tags) == 0 {
		return text
	}
	return text + "\n\n#" + strings.Join(tags, " #")
}
