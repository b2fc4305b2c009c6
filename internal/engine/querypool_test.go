package engine

import (
	"strings"
	"testing"
)

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		name     string
		keyword  string
		region   string
		industry string
	}{
		{"region and industry", "東京 IT", "東京", "IT"},
		{"ward suffix", "渋谷区 Web制作", "渋谷区", "Web制作"},
		{"prefecture suffix", "静岡県 製造業", "静岡県", "製造業"},
		{"no region", "システム開発", "", "システム開発"},
		{"industry only multiword", "訪問 介護", "", "訪問 介護"},
		{"region last", "製造業 大阪", "大阪", "製造業"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, industry := ParseKeyword(tt.keyword)
			if region != tt.region {
				t.Errorf("region = %q, want %q", region, tt.region)
			}
			if industry != tt.industry {
				t.Errorf("industry = %q, want %q", industry, tt.industry)
			}
		})
	}
}

func TestQueryPoolSize(t *testing.T) {
	// A keyword without a region must still produce a sizable pool.
	p := NewQueryPool("介護")
	if p.Size() < 50 {
		t.Errorf("Size() = %d, want >= 50", p.Size())
	}

	// A region keyword expands across sub and nearby regions.
	p = NewQueryPool("東京 IT")
	if p.Size() < 200 {
		t.Errorf("Size() = %d, want >= 200", p.Size())
	}
}

func TestQueryPoolNoDuplicates(t *testing.T) {
	p := NewQueryPool("大阪 製造業")
	seen := make(map[string]bool)
	for _, q := range p.queries {
		if seen[q] {
			t.Errorf("duplicate query %q", q)
		}
		seen[q] = true
	}
}

func TestNextBatchNeverRepeats(t *testing.T) {
	p := NewQueryPool("東京 IT")
	seen := make(map[string]bool)
	for {
		batch := p.NextBatch(20, nil)
		if len(batch) == 0 {
			break
		}
		for _, q := range batch {
			if seen[q] {
				t.Fatalf("query %q handed out twice", q)
			}
			seen[q] = true
		}
	}
	if len(seen) != p.Size() {
		t.Errorf("handed out %d queries, pool size %d", len(seen), p.Size())
	}
	if p.Remaining() != 0 {
		t.Errorf("Remaining() = %d after exhaustion", p.Remaining())
	}
}

func TestNextBatchSkipsExtraUsed(t *testing.T) {
	p := NewQueryPool("福岡 建設")
	first := p.NextBatch(5, nil)
	extra := make(map[string]bool)
	for _, q := range p.queries {
		if !p.used[q] {
			extra[q] = true
			break
		}
	}
	second := p.NextBatch(5, extra)
	for _, q := range second {
		if extra[q] {
			t.Errorf("batch contained externally used query %q", q)
		}
		for _, f := range first {
			if q == f {
				t.Errorf("batch repeated query %q", q)
			}
		}
	}
}

func TestGenerateQueriesContainRegion(t *testing.T) {
	queries := generateQueries("東京", "IT")
	withRegion := 0
	for _, q := range queries {
		if strings.Contains(q, "東京") || strings.Contains(q, "区") {
			withRegion++
		}
	}
	if withRegion == 0 {
		t.Error("no query carries the region")
	}
}
