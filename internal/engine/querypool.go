package engine

import (
	"math/rand"
	"strings"
	"time"
)

// QueryPool holds every query generated from a keyword, shuffled once at
// construction. NextBatch hands out unused queries in shuffled order so retry
// rounds never repeat a query within a job.
type QueryPool struct {
	queries []string
	used    map[string]bool
}

// NewQueryPool builds the full cross product of region expansions, industry
// variants, and attribute suffixes for the keyword, deduplicates it, and
// shuffles it with a pool-local source.
func NewQueryPool(keyword string) *QueryPool {
	region, industry := ParseKeyword(keyword)
	queries := generateQueries(region, industry)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(queries), func(i, j int) {
		queries[i], queries[j] = queries[j], queries[i]
	})

	return &QueryPool{
		queries: queries,
		used:    make(map[string]bool),
	}
}

// Size returns the total number of distinct queries in the pool.
func (p *QueryPool) Size() int { return len(p.queries) }

// Remaining returns how many queries have not been handed out yet.
func (p *QueryPool) Remaining() int {
	n := 0
	for _, q := range p.queries {
		if !p.used[q] {
			n++
		}
	}
	return n
}

// NextBatch returns up to size unused queries and marks them used. Queries in
// extraUsed are skipped as well. Returns nil when the pool is exhausted.
func (p *QueryPool) NextBatch(size int, extraUsed map[string]bool) []string {
	var batch []string
	for _, q := range p.queries {
		if len(batch) >= size {
			break
		}
		if p.used[q] || extraUsed[q] {
			continue
		}
		p.used[q] = true
		batch = append(batch, q)
	}
	return batch
}

// initialQuerySuffixes feed the round-0 query generator. Broad coverage
// beats precision here; the pool takes over for retry rounds.
var initialQuerySuffixes = []string{
	"株式会社", "有限会社", "合同会社", "企業", "会社",
	"システム開発", "Web制作", "ソフトウェア", "アプリ開発", "ソリューション",
	"企業一覧", "会社一覧", "企業リスト", "おすすめ企業", "優良企業",
	"site:co.jp", "本社", "会社概要", "公式",
	"協会 会員", "連盟",
}

// InitialQueries builds the simple round-0 query list: the keyword paired
// with each fixed suffix.
func InitialQueries(keyword string) []string {
	out := make([]string, 0, len(initialQuerySuffixes))
	for _, suffix := range initialQuerySuffixes {
		out = append(out, keyword+" "+suffix)
	}
	return out
}

// generateQueries builds the deduplicated union of several query families so
// that even a region-less keyword yields dozens of distinct queries.
func generateQueries(region, industry string) []string {
	regions := expandRegion(region)
	variants := variantsForIndustry(industry)

	seen := make(map[string]bool)
	var out []string
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			return
		}
		seen[q] = true
		out = append(out, q)
	}
	join := func(parts ...string) string {
		var kept []string
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, " ")
	}

	// Plain region x variant pairs.
	for _, reg := range regions {
		for _, v := range variants {
			add(join(reg, v))
		}
	}

	// Attribute-qualified queries over the main region only.
	for _, v := range variants {
		for _, attr := range attributeSuffixes {
			add(join(region, v, attr))
		}
	}

	// Roundup queries pull in list pages that link out to company sites.
	for _, v := range variants {
		for _, lk := range listKeywords {
			add(join(region, v, lk))
		}
	}

	// Sub-region corporate-form queries give later rounds fresh ground.
	for _, sub := range subRegions[region] {
		for _, v := range variants {
			add(join(sub, v, "株式会社"))
		}
	}

	// Site-restricted queries bias results toward official corporate sites.
	for _, v := range variants {
		add(join(region, v, "site:co.jp"))
		add(join(region, v, "会社概要"))
	}

	return out
}
