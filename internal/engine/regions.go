package engine

import "strings"

// regionKeywords are tokens recognized as a region when parsing a keyword.
var regionKeywords = map[string]bool{
	"東京": true, "大阪": true, "名古屋": true, "福岡": true, "札幌": true,
	"横浜": true, "神戸": true, "京都": true, "埼玉": true, "千葉": true,
	"神奈川": true, "愛知": true, "兵庫": true, "北海道": true, "広島": true,
	"仙台": true, "渋谷": true, "新宿": true, "品川": true, "千代田": true,
	"中央区": true, "目黒": true, "さいたま": true, "川崎": true, "相模原": true,
	"堺": true, "北九州": true, "浜松": true, "熊本": true,
}

// regionSuffixes mark administrative units; a token ending in one is a region.
var regionSuffixes = []string{"区", "市", "県", "都", "府"}

// subRegions refines a main region down to ward/city level for retry rounds.
var subRegions = map[string][]string{
	"東京": {"渋谷区", "新宿区", "港区", "千代田区", "品川区", "中央区",
		"目黒区", "豊島区", "文京区", "台東区", "江東区", "墨田区"},
	"大阪": {"大阪市北区", "大阪市中央区", "大阪市淀川区", "大阪市西区",
		"堺市", "豊中市", "吹田市", "東大阪市"},
	"名古屋": {"名古屋市中区", "名古屋市中村区", "名古屋市東区",
		"名古屋市西区", "名古屋市千種区"},
	"福岡": {"福岡市博多区", "福岡市中央区", "北九州市", "久留米市"},
	"横浜": {"横浜市西区", "横浜市中区", "横浜市港北区", "横浜市神奈川区"},
	"札幌": {"札幌市中央区", "札幌市北区", "札幌市東区"},
	"神戸": {"神戸市中央区", "神戸市兵庫区", "神戸市東灘区"},
	"京都": {"京都市下京区", "京都市中京区", "京都市上京区"},
}

// nearbyRegions widens the net to adjacent areas once sub-regions run dry.
var nearbyRegions = map[string][]string{
	"東京":  {"神奈川", "横浜", "川崎", "埼玉", "さいたま市", "千葉"},
	"大阪":  {"兵庫", "神戸", "京都", "奈良", "堺"},
	"名古屋": {"愛知", "岐阜", "三重", "豊田"},
	"福岡":  {"北九州", "佐賀", "熊本", "大分"},
	"横浜":  {"東京", "川崎", "藤沢", "相模原"},
	"札幌":  {"旭川", "函館", "小樽"},
}

// industryVariants expands a parsed industry phrase into related search terms.
// Keys match by substring against the parsed industry.
var industryVariants = map[string][]string{
	"IT": {"IT企業", "システム開発", "Web制作", "アプリ開発", "SaaS", "クラウド",
		"AI", "セキュリティ", "インフラ", "データ分析", "DX推進", "SES"},
	"システム開発": {"SI企業", "受託開発", "業務システム", "Web開発", "ソフトウェア"},
	"Web制作":  {"ホームページ制作", "Webデザイン", "ECサイト構築", "CMS開発"},
	"製造業": {"メーカー", "工場", "製造", "ものづくり", "部品加工", "金属加工",
		"プラスチック成形", "電子部品", "精密機器", "自動車部品"},
	"メーカー":     {"製造業", "工場", "OEM", "部品", "組立"},
	"建設":       {"建設会社", "ゼネコン", "施工管理", "設備工事", "電気工事", "内装工事"},
	"不動産":      {"不動産会社", "デベロッパー", "管理会社", "仲介", "賃貸管理"},
	"飲食":       {"飲食店", "レストラン", "フードサービス", "ケータリング", "給食"},
	"物流":       {"物流会社", "運送", "倉庫", "配送", "ロジスティクス"},
	"広告":       {"広告代理店", "マーケティング", "PR会社", "デジタルマーケティング"},
	"人材":       {"人材紹介", "人材派遣", "採用支援", "HRテック"},
	"コンサルティング": {"経営コンサルタント", "ITコンサル", "戦略コンサル", "業務改善"},
}

// attributeSuffixes qualify a base query with corporate-form, scale, and
// listing markers.
var attributeSuffixes = []string{
	"株式会社",
	"ベンチャー", "スタートアップ", "中堅", "老舗",
	"上場企業", "非上場", "急成長",
	"BtoB", "自社サービス",
}

// listKeywords produce roundup-style queries whose result pages often link to
// many individual company sites.
var listKeywords = []string{"企業一覧", "会社一覧", "企業リスト"}

// ParseKeyword splits a free-form keyword into a region and an industry
// phrase. A token is a region if it is in the region dictionary or ends in an
// administrative-unit suffix; everything else is industry. With no region
// parsed, the whole keyword is the industry.
func ParseKeyword(keyword string) (region, industry string) {
	var industryParts []string
	for _, part := range strings.Fields(keyword) {
		if isRegionToken(part) {
			region = part
			continue
		}
		industryParts = append(industryParts, part)
	}
	industry = strings.Join(industryParts, " ")
	if region == "" {
		industry = strings.TrimSpace(keyword)
	}
	return region, industry
}

func isRegionToken(tok string) bool {
	if regionKeywords[tok] {
		return true
	}
	for _, suf := range regionSuffixes {
		if tok != suf && strings.HasSuffix(tok, suf) {
			return true
		}
	}
	return false
}

// expandRegion returns the main region plus its sub- and nearby regions.
// An empty region expands to a single empty entry so cross products still fire.
func expandRegion(region string) []string {
	if region == "" {
		return []string{""}
	}
	out := []string{region}
	out = append(out, subRegions[region]...)
	out = append(out, nearbyRegions[region]...)
	return out
}

// variantsForIndustry returns the variant table entry matched by substring,
// or a small generic fallback. The parsed industry itself is always included.
func variantsForIndustry(industry string) []string {
	if industry == "" {
		return []string{"企業", "会社"}
	}
	var variants []string
	if v, ok := industryVariants[industry]; ok {
		variants = v
	} else {
		for key, v := range industryVariants {
			if strings.Contains(industry, key) {
				variants = v
				break
			}
		}
	}
	if variants == nil {
		variants = []string{
			industry + " 中小企業",
			industry + " 優良企業",
			industry + " 会社一覧",
		}
	}
	out := make([]string, 0, len(variants)+1)
	out = append(out, industry)
	for _, v := range variants {
		if v != industry {
			out = append(out, v)
		}
	}
	return out
}
