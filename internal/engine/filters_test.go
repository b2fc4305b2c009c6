package engine

import "testing"

func TestIsExcludedDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"indeed.com", true},
		{"jp.indeed.com", true},
		{"en-japan.com", true},
		{"city.yokohama.lg.jp", true},
		{"www.meti.go.jp", true},
		{"keio.ac.jp", true},
		{"example.co.jp", false},
		{"sky-inc.jp", false},
		{"tabelog.com", true},
	}
	for _, tt := range tests {
		if got := IsExcludedDomain(tt.domain); got != tt.want {
			t.Errorf("IsExcludedDomain(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestIsExcludedTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"東京のIT企業 求人情報", true},
		{"エンジニア転職なら", true},
		{"IT企業徹底比較2026", true},
		{"おすすめ企業TOP10", true},
		{"株式会社サンプル", false},
		{"田中製作所 会社概要", false},
	}
	for _, tt := range tests {
		if got := IsExcludedTitle(tt.title); got != tt.want {
			t.Errorf("IsExcludedTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestIsLikelyCompanyTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"株式会社サンプル", true},
		{"Sample Inc.", true},
		{"東京のIT企業10選", false},
		{"システム開発とは？", false},
		{"厳選Web制作会社", false},
		{"田中工業", true}, // undecidable, left for the cleanser
	}
	for _, tt := range tests {
		if got := IsLikelyCompanyTitle(tt.title); got != tt.want {
			t.Errorf("IsLikelyCompanyTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
