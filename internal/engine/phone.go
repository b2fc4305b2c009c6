package engine

import (
	"regexp"
	"strings"
)

var (
	telHrefRe     = regexp.MustCompile(`href=["']tel:([0-9\-]+)["']`)
	labeledTelRe  = regexp.MustCompile(`(?:TEL|Tel|tel|電話|電話番号|☎|℡|代表)[:\s：]*\(?0\d{1,4}\)?[-\s.]?\d{1,4}[-\s.]?\d{3,4}`)
	bareDigitsRe  = regexp.MustCompile(`\b0\d{1,4}[-\s]?\d{1,4}[-\s]?\d{3,4}\b`)
	nonDigitRe    = regexp.MustCompile(`\D`)
	nonPhoneChrRe = regexp.MustCompile(`[^\d\-]`)
)

// IsValidPhoneNumber accepts Japanese numbers only: 10 or 11 digits, leading
// zero, and no 0000 run (placeholder numbers).
func IsValidPhoneNumber(phone string) bool {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) < 10 || len(digits) > 11 {
		return false
	}
	if !strings.HasPrefix(digits, "0") {
		return false
	}
	if strings.Contains(digits, "0000") {
		return false
	}
	return true
}

// FormatPhoneNumber hyphenates by Japanese numbering conventions.
func FormatPhoneNumber(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")

	// Tokyo area: 03-xxxx-xxxx
	if len(digits) == 10 && digits[:2] == "03" {
		return digits[:2] + "-" + digits[2:6] + "-" + digits[6:]
	}
	// Mobile: 0x0-xxxx-xxxx
	if len(digits) == 11 {
		switch digits[:2] {
		case "09", "08", "07":
			return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
		}
	}
	// Toll-free: 0120-xxx-xxx
	if len(digits) == 10 && digits[:4] == "0120" {
		return digits[:4] + "-" + digits[4:7] + "-" + digits[7:]
	}
	if strings.Contains(phone, "-") {
		return phone
	}
	if len(digits) == 10 {
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	}
	return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
}

// ExtractPhone pulls the first valid phone number out of raw HTML. tel: links
// win over labeled numbers, which win over bare digit runs.
func ExtractPhone(html string) string {
	for _, m := range telHrefRe.FindAllStringSubmatch(html, -1) {
		if phone := cleanAndFormat(m[1]); phone != "" {
			return phone
		}
	}
	for _, m := range labeledTelRe.FindAllString(html, -1) {
		if phone := cleanAndFormat(m); phone != "" {
			return phone
		}
	}
	for _, m := range bareDigitsRe.FindAllString(html, -1) {
		if phone := cleanAndFormat(m); phone != "" {
			return phone
		}
	}
	return ""
}

func cleanAndFormat(raw string) string {
	phone := strings.ReplaceAll(nonPhoneChrRe.ReplaceAllString(raw, ""), "--", "-")
	if !IsValidPhoneNumber(phone) {
		return ""
	}
	return FormatPhoneNumber(phone)
}
