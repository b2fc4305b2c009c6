package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

const cleanseSystemPrompt = `あなたは企業データクレンジングの専門家です。

## タスク
検索結果から「企業の公式HP」のみを抽出・正規化してください。
企業HPではないサイトは必ず除外してください。

## 処理ルール

### 1. 企業名の正規化
検索結果のtitleから正しい企業名を抽出：
- 「株式会社〇〇｜公式サイト」→「株式会社〇〇」
- 「〇〇 | 会社案内」→「株式会社〇〇」または「〇〇株式会社」
- 「沿革：〇〇株式会社」→「〇〇株式会社」（余分な接頭辞を削除）

### 2. 必ず除外するもの
- 比較・マッチングサイト、一括見積もりサイト
- イベント・展示会サイト（「〇〇展」「〇〇EXPO」等）
- 企業リスト・法人名簿の販売サイト
- 業界団体・協会（「〇〇協会」「〇〇連盟」「〇〇工業会」、商工会議所）
- 学校・スクール・メディア・ニュースサイト
- 政府・自治体サイト
- キャッチフレーズのみで企業名が抽出できないもの
- 法人格（株式会社等）を持たない名前

### 3. URLの正規化
URLはホームページ（トップページ）に正規化してください。

### 4. ドメイン重複の排除
同一ドメインの企業は1件にまとめてください。
existing_domainsに含まれるドメインは除外してください。

## 出力形式（JSONのみ、説明文なし）
{
  "cleaned_companies": [
    {"company_name": "株式会社〇〇", "url": "https://...", "domain": "...", "relevance_score": 0.9}
  ],
  "valid_count": 0,
  "excluded_count": 0
}`

type cleansedCompany struct {
	CompanyName    string  `json:"company_name"`
	URL            string  `json:"url"`
	Domain         string  `json:"domain"`
	RelevanceScore float64 `json:"relevance_score"`
}

type cleanseEnvelope struct {
	CleanedCompanies []cleansedCompany `json:"cleaned_companies"`
	ValidCount       int               `json:"valid_count"`
	ExcludedCount    int               `json:"excluded_count"`
}

// maxPromptDomains caps how many already-known domains ride along in the
// prompt.
const maxPromptDomains = 100

// CleanseCompanies sends candidates to the LLM in batches and returns the
// survivors with normalized names. A batch whose call fails after all retries
// is dropped entirely; raw titles never leak into the output. With no LLM
// configured, candidates pass through untouched.
func CleanseCompanies(ctx context.Context, candidates []Candidate, keyword string, existingDomains []string) []Candidate {
	if cfg.LLMClient == nil {
		slog.Warn("llm cleansing disabled, passing candidates through")
		return candidates
	}
	if len(candidates) == 0 {
		return candidates
	}

	slog.Info("cleanse start", slog.Int("candidates", len(candidates)), slog.String("keyword", keyword))

	var out []Candidate
	for start := 0; start < len(candidates); start += cfg.CleanseBatchSize {
		end := start + cfg.CleanseBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		cleansed, err := cleanseBatch(ctx, batch, keyword, existingDomains)
		if err != nil {
			slog.Warn("cleanse batch dropped",
				slog.Int("batch_start", start),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err))
			continue
		}
		out = append(out, cleansed...)
	}

	slog.Info("cleanse done",
		slog.Int("in", len(candidates)),
		slog.Int("out", len(out)),
		slog.Int("excluded", len(candidates)-len(out)))
	return out
}

// cleanseBatch runs one LLM call with retries and maps the response back to
// the batch by domain.
func cleanseBatch(ctx context.Context, batch []Candidate, keyword string, existingDomains []string) ([]Candidate, error) {
	prompt := buildCleansePrompt(batch, keyword, existingDomains)

	var lastErr error
	for attempt := 0; attempt <= cfg.CleanseRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.LLMCalls.Add(1)
		content, err := cfg.LLMClient.Complete(ctx, cleanseSystemPrompt, prompt,
			llm.WithChatTemperature(0.2),
			llm.WithChatMaxTokens(4096),
		)
		if err != nil {
			metrics.LLMErrors.Add(1)
			lastErr = err
			continue
		}

		var envelope cleanseEnvelope
		if err := json.Unmarshal([]byte(stripFences(content)), &envelope); err != nil {
			metrics.LLMErrors.Add(1)
			lastErr = fmt.Errorf("decode cleanse response: %w", err)
			continue
		}
		return applyCleanse(batch, envelope), nil
	}
	return nil, lastErr
}

// applyCleanse joins the LLM output with the original batch by domain, then
// runs the deterministic normalizer and the validity gate over each name.
func applyCleanse(batch []Candidate, envelope cleanseEnvelope) []Candidate {
	byDomain := make(map[string]Candidate, len(batch))
	for _, c := range batch {
		byDomain[c.Domain] = c
	}

	var out []Candidate
	seen := make(map[string]bool)
	for _, cc := range envelope.CleanedCompanies {
		domain := cc.Domain
		if domain == "" {
			domain = ExtractDomain(cc.URL)
		}
		original, ok := byDomain[domain]
		if !ok || seen[domain] {
			continue
		}

		name := NormalizeCompanyName(cc.CompanyName)
		if IsInvalidCompanyName(name) {
			slog.Debug("name rejected", slog.String("raw", cc.CompanyName), slog.String("normalized", name))
			continue
		}

		seen[domain] = true
		original.CompanyName = name
		if cc.URL != "" {
			original.URL = NormalizeToTopPage(cc.URL)
		}
		out = append(out, original)
	}
	return out
}

func buildCleansePrompt(batch []Candidate, keyword string, existingDomains []string) string {
	type promptEntry struct {
		Index  int    `json:"index"`
		Title  string `json:"title"`
		URL    string `json:"url"`
		Domain string `json:"domain"`
	}
	entries := make([]promptEntry, len(batch))
	for i, c := range batch {
		entries[i] = promptEntry{Index: i + 1, Title: c.CompanyName, URL: c.URL, Domain: c.Domain}
	}
	data, _ := json.MarshalIndent(entries, "", "  ")

	if len(existingDomains) > maxPromptDomains {
		existingDomains = existingDomains[:maxPromptDomains]
	}
	domains, _ := json.Marshal(existingDomains)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 検索キーワード\n%s\n\n", keyword)
	fmt.Fprintf(&sb, "## existing_domains（除外対象）\n%s\n\n", domains)
	fmt.Fprintf(&sb, "## 検索結果データ\n%s\n\n", data)
	sb.WriteString("## 指示\n上記の検索結果から、企業の公式HPのみを抽出し、指定のJSON形式で出力してください。\n")
	return sb.String()
}

// stripFences unwraps a markdown code fence the model sometimes adds around
// its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
