package posting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MinConfidence is the confidence below which a filled field is asked again.
const MinConfidence = 0.6

// Missing is a required field without a usable value.
type Missing struct {
	Field    string `json:"field"`
	Question string `json:"question"`
}

var required = []struct {
	field    string
	question string
}{
	{"title", "공고 제목을 알려주시겠어요?"},
	{"region", "어느 지역에서 근무하시나요? (예: 서울 송파구)"},
	{"schedule_days", "근무 가능한 요일을 알려주세요. (예: 월~금 또는 월,수,금)"},
	{"start_time", "근무 시작 시간을 알려주세요. (예: 오전 9시 -> 09:00)"},
	{"participants", "몇 명을 모집하시나요?"},
	{"hourly_wage", "희망 시급을 알려주세요. (예: 15000원)"},
	{"description", "공고에 들어갈 자세한 설명을 추가로 해주세요."},
}

var (
	clockPattern        = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})시`)
	wageWonPattern      = regexp.MustCompile(`(\d{3,6})\s*원`)
	participantsPattern = regexp.MustCompile(`(\d+)\s*명`)
	dayRangePattern     = regexp.MustCompile(`([월화수목금토일])\s*~\s*([월화수목금토일])`)
	numberPattern       = regexp.MustCompile(`\d+(?:,\d{3})*`)
)

var weekdays = []string{"월요일", "화요일", "수요일", "목요일", "금요일", "토요일", "일요일"}

// MissingFields fills what it can from the raw text and description, then
// returns the required fields that are still empty or low confidence.
func MissingFields(post *JobPost) []Missing {
	text := post.RawText + "\n" + post.Description

	if !filled(post, "start_time") {
		if start, ok := parseClock(text); ok {
			post.StartTime = start
			post.setConfidence("start_time", 0.7)
		}
	}
	if !filled(post, "hourly_wage") {
		if wage, ok := parseWon(text); ok {
			post.HourlyWage = wage
			post.WageAmount = fmt.Sprintf("%d원", wage)
			post.setConfidence("hourly_wage", 0.7)
		}
	}

	var out []Missing
	for _, r := range required {
		if !filled(post, r.field) {
			out = append(out, Missing{Field: r.field, Question: r.question})
		}
	}
	return out
}

func filled(post *JobPost, field string) bool {
	if c, ok := post.Confidence[field]; ok && c < MinConfidence {
		return false
	}
	switch field {
	case "title":
		return strings.TrimSpace(post.Title) != ""
	case "region":
		return strings.TrimSpace(post.Region) != ""
	case "schedule_days":
		return len(post.ScheduleDays) > 0
	case "start_time":
		return strings.TrimSpace(post.StartTime) != ""
	case "participants":
		return post.Participants > 0
	case "hourly_wage":
		return post.HourlyWage > 0
	case "description":
		return strings.TrimSpace(post.Description) != ""
	default:
		return true
	}
}

// MergeAnswer applies a follow-up answer for field to post. Besides the asked
// field, wage, participants and days found in the answer fill empty fields.
func MergeAnswer(post *JobPost, field, answer string) *JobPost {
	out := *post
	out.ScheduleDays = append([]string(nil), post.ScheduleDays...)
	if post.Confidence != nil {
		out.Confidence = make(map[string]float64, len(post.Confidence))
		for k, v := range post.Confidence {
			out.Confidence[k] = v
		}
	}
	out.RawText = appendRaw(post.RawText, answer)
	answer = strings.TrimSpace(answer)

	switch field {
	case "title":
		out.Title = answer
	case "region":
		out.Region = answer
	case "description":
		out.Description = answer
	case "start_time":
		if start, ok := parseClock(answer); ok {
			out.StartTime = start
		} else if answer != "" {
			out.StartTime = answer
		}
	case "participants":
		if n, ok := firstNumber(answer); ok {
			out.Participants = n
		}
	case "hourly_wage":
		if n, ok := firstNumber(answer); ok {
			out.HourlyWage = n
			out.WageAmount = fmt.Sprintf("%d원", n)
		}
	case "schedule_days":
		out.ScheduleDays = nil
	}
	if field != "" {
		delete(out.Confidence, field)
	}

	if out.HourlyWage == 0 {
		if wage, ok := parseWon(answer); ok {
			out.HourlyWage = wage
			out.WageAmount = fmt.Sprintf("%d원", wage)
		}
	}
	if out.Participants == 0 {
		if m := participantsPattern.FindStringSubmatch(answer); m != nil {
			out.Participants, _ = strconv.Atoi(m[1])
		}
	}
	if len(out.ScheduleDays) == 0 {
		out.ScheduleDays = parseDays(answer)
	}
	return &out
}

// parseClock reads the first "오후 2시" style hour as HH:00:00.
func parseClock(text string) (string, bool) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[2])
	if err != nil || hour > 24 {
		return "", false
	}
	if m[1] == "오후" && hour < 12 {
		hour += 12
	}
	return fmt.Sprintf("%02d:00:00", hour), true
}

func parseWon(text string) (int, bool) {
	m := wageWonPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

func firstNumber(text string) (int, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	return n, err == nil && n > 0
}

// parseDays reads a "월~금" range, else every full weekday name in text.
func parseDays(text string) []string {
	if m := dayRangePattern.FindStringSubmatch(text); m != nil {
		start, end := weekdayIndex(m[1]), weekdayIndex(m[2])
		if start >= 0 && end >= start {
			return append([]string(nil), weekdays[start:end+1]...)
		}
	}

	var found []string
	for _, day := range weekdays {
		if strings.Contains(text, day) {
			found = append(found, day)
		}
	}
	if len(found) > 0 {
		return found
	}

	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '/' || r == ' '
	}) {
		if utf8.RuneCountInString(token) != 1 {
			continue
		}
		if i := weekdayIndex(token); i >= 0 {
			found = append(found, weekdays[i])
		}
	}
	return found
}

func weekdayIndex(short string) int {
	for i, day := range weekdays {
		if strings.HasPrefix(day, short) {
			return i
		}
	}
	return -1
}
