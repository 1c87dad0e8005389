package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var (
	monthNameDateRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?[ \t]+(\d{1,2})(?:st|nd|rd|th)?,?[ \t]+(\d{4})\b`)
	numericDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// OrderDate reads the first "Month D, YYYY" date, else the first MM/DD/YYYY
// date. When the first candidate is not a real calendar date the field is
// absent; later candidates are not consulted.
func OrderDate(text string) entity.Result[entity.Date] {
	if m := monthNameDateRe.FindStringSubmatch(text); m != nil {
		month := monthPrefixes[strings.ToLower(m[1])[:3]]
		if d, ok := dateFromParts(m[3], month, m[2]); ok {
			return entity.Found(d, entity.SourceRegex)
		}
		return entity.Absent[entity.Date]()
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		mm, _ := strconv.Atoi(m[1])
		if mm < 1 || mm > 12 {
			return entity.Absent[entity.Date]()
		}
		if d, ok := dateFromParts(m[3], time.Month(mm), m[2]); ok {
			return entity.Found(d, entity.SourceRegex)
		}
	}
	return entity.Absent[entity.Date]()
}

func dateFromParts(year string, month time.Month, day string) (entity.Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return entity.Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return entity.Date{}, false
	}
	return entity.NewDate(y, month, d)
}
