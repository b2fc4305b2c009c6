package engine

import (
	"regexp"
	"strings"
)

// excludedDomainSuffixes drop government and education sites.
var excludedDomainSuffixes = []string{".go.jp", ".lg.jp", ".ed.jp", ".ac.jp"}

// excludedTitlePatterns drop job boards, roundups, and portal pages by
// substring match against the lower-cased title.
var excludedTitlePatterns = []string{
	// job and recruiting
	"転職", "求人", "採用情報", "年収", "就職", "インターン",
	"応援サイト", "お仕事", "仕事を探す", "仕事探し", "会員登録",
	"派遣", "正社員", "アルバイト", "パート", "工場求人",
	"製造求人", "軽作業", "工場で働く", "ものづくり企業で働く",
	// student career
	"就活", "キャリア", "新卒", "内定", "エントリー",
	// portals and directories
	"企業検索", "会社検索", "法人検索", "企業データベース",
	// roundup articles
	"社を紹介", "社まとめ", "件を紹介", "企業を紹介",
	"徹底比較", "口コミ", "評判",
	// rankings
	"top100", "top50", "top10", "ランキングtop",
}

// excludedDomains drop known non-company sites by substring match against the
// lower-cased domain.
var excludedDomains = []string{
	// major job boards
	"indeed.com", "indeed.jp", "mynavi.jp", "rikunabi.com", "doda.jp",
	"en-japan.com", "baitoru.com", "careerconnection.jp", "jobchange.jp", "hatarako.net",
	// factory and manufacturing job boards
	"tama-monozukuri.jp", "job-gear.jp", "e-aidem.com", "hellowork.mhlw.go.jp",
	"persol-factorypartners.co.jp", "factory-job.jp", "kojo-job.jp", "kojo-navi.jp",
	"job-list.net", "monozukuri-matching.jp", "jobpaper.net", "nikkan.co.jp",
	// IT and creative job boards
	"findjob.jp", "forkwell.com", "geekly.co.jp", "paiza.jp", "levtech.jp",
	// staffing agencies
	"tempstaff.co.jp", "pasona.co.jp", "manpowergroup.jp", "adecco.co.jp",
	"staffservice.co.jp", "haken.en-japan.com",
	// news media
	"yahoo.co.jp", "news.yahoo.co.jp", "nikkei.com", "asahi.com", "yomiuri.co.jp",
	"mainichi.jp", "sankei.com",
	// SNS
	"facebook.com", "twitter.com", "x.com", "instagram.com",
	"youtube.com", "tiktok.com", "linkedin.com",
	// encyclopedias
	"wikipedia.org", "ja.wikipedia.org",
	// EC and big platforms
	"google.com", "amazon.co.jp", "rakuten.co.jp",
	// company info and review sites
	"bizmap.jp", "baseconnect.in", "wantedly.com", "vorkers.com", "openwork.jp",
	// maps and facility search
	"navitime.co.jp", "mapion.co.jp", "mapfan.com", "ekiten.jp",
	"hotpepper.jp", "tabelog.com", "gnavi.co.jp", "retty.me",
	// career portals
	"career-x.co.jp", "type.jp", "green-japan.com", "mid-tenshoku.com",
	// blogs and tech media
	"note.com", "qiita.com", "zenn.dev", "hateblo.jp", "ameblo.jp",
	// press releases
	"prtimes.jp", "atpress.ne.jp",
	// company lists and roundups
	"imitsu.jp", "houjin.jp",
	"factoring.southagency.co.jp", "mics.city.shinagawa.tokyo.jp",
	"best100.v-tsushin.jp", "isms.jp", "itnabi.com",
	"appstars.io", "ikesai.com", "rekaizen.com", "careerforum.net",
	"startupclass.co.jp", "herp.careers", "readycrew.jp", "ai-taiwan.com.tw",
	"utilly.ne.jp", "hatarakigai.info", "officenomikata.jp", "cheercareer.jp",
	// ranking sites
	"mersenne.jp", "3utsu.com", "fallabs.com", "boxil.jp", "itreview.jp",
	"発注ナビ.jp", "ferret-plus.com", "liskul.com", "webtan.impress.co.jp",
	"seleck.cc", "leverages.jp", "aippear.net", "techcrunch.com",
	"bridge-salon.jp", "it-trend.jp", "aspic.or.jp", "meetsmore.com",
	"proengineer.internous.co.jp", "crowdworks.jp", "lancers.jp",
	// comparison and matching sites
	"biz.ne.jp", "web-kanji.com", "system-kanji.com", "video-kanji.com",
	"app-kanji.com", "meibo-kanji.com", "kanji-inc.co.jp",
	"bizitora.jp", "system-dev-navi.com", "emeao.jp", "hnavi.co.jp",
	"hacchu-navi.com", "rekaiz.com", "発注ナビ.com", "b-pos.jp",
	"compareit.jp", "itpropartners.com", "pro-d-use.jp",
	// student career sites
	"carrikatu-it.com", "unison-career.jp", "career-tasu.jp",
	"job-terminal.com", "shukatsu-mirai.com", "onecareer.jp",
	"goodfind.jp", "offerbox.jp", "digmee.jp", "jobrass.com",
	"rebe.jp", "careerpark.jp", "shukatsu-kaigi.jp",
}

var (
	corporateFormRe = regexp.MustCompile(`(?i)株式会社|有限会社|合同会社|Inc\.|Corp\.|Co\.,?\s*Ltd|LLC`)
	roundupCountRe  = regexp.MustCompile(`\d+選`)
	explainerRe     = regexp.MustCompile(`とは[？?]?\s*$|とは[|｜]`)
	guideArticleRe  = regexp.MustCompile(`厳選|完全ガイド|徹底解説|まとめ記事`)
)

// IsExcludedDomain reports whether the domain matches the denylist or ends in
// a government or education suffix.
func IsExcludedDomain(domain string) bool {
	d := strings.ToLower(domain)
	for _, excluded := range excludedDomains {
		if strings.Contains(d, excluded) {
			return true
		}
	}
	for _, suffix := range excludedDomainSuffixes {
		if strings.HasSuffix(d, suffix) {
			return true
		}
	}
	return false
}

// IsExcludedTitle reports whether the title matches a job-board or roundup
// pattern.
func IsExcludedTitle(title string) bool {
	t := strings.ToLower(title)
	for _, pattern := range excludedTitlePatterns {
		if strings.Contains(t, pattern) {
			return true
		}
	}
	return false
}

// IsLikelyCompanyTitle is a cheap check that keeps obvious company sites and
// drops obvious articles before any LLM involvement. Undecidable titles are
// kept for the cleanser.
func IsLikelyCompanyTitle(title string) bool {
	if corporateFormRe.MatchString(title) {
		return true
	}
	if roundupCountRe.MatchString(title) {
		return false
	}
	if explainerRe.MatchString(title) {
		return false
	}
	if guideArticleRe.MatchString(title) {
		return false
	}
	return true
}
