package models

import (
	"strconv"
	"strings"
	"time"
)

// ParsedCV is the structured CV record built from the parse endpoint's
// loosely-typed output and persisted as the "online CV".
type ParsedCV struct {
	ID         int64     `json:"id,omitempty"`
	FileKey    string    `json:"file_key,omitempty"`
	RawText    string    `json:"raw_text,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Headline   string    `json:"headline,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	YearsOfExp int       `json:"years_of_experience,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// parsedFieldSources maps each canonical CV field to the source-key variants
// the parse endpoint has been observed to emit. Lookup is case-insensitive
// and resolved exactly once, at parse time, into the typed record above.
var parsedFieldSources = map[string][]string{
	"full_name": {"full_name", "fullname", "name", "candidate_name"},
	"email":     {"email", "email_address", "mail"},
	"phone":     {"phone", "phone_number", "mobile", "tel"},
	"headline":  {"headline", "title", "current_title", "position"},
	"summary":   {"summary", "about", "objective", "profile_summary"},
	"skills":    {"skills", "skill_list", "keywords"},
	"years":     {"years_of_experience", "yearsexperience", "experience_years", "yoe"},
}

// ResolveParsedFields extracts the canonical fields from a parsed-CV payload.
// Keys are matched case-insensitively against the accepted variants; missing
// fields are simply left zero.
func ResolveParsedFields(src map[string]any) ParsedCV {
	lowered := make(map[string]any, len(src))
	for k, v := range src {
		lowered[strings.ToLower(k)] = v
	}

	cv := ParsedCV{
		FullName: lookupString(lowered, parsedFieldSources["full_name"]),
		Email:    lookupString(lowered, parsedFieldSources["email"]),
		Phone:    lookupString(lowered, parsedFieldSources["phone"]),
		Headline: lookupString(lowered, parsedFieldSources["headline"]),
		Summary:  lookupString(lowered, parsedFieldSources["summary"]),
		Skills:   lookupStrings(lowered, parsedFieldSources["skills"]),
	}
	cv.YearsOfExp = lookupInt(lowered, parsedFieldSources["years"])
	return cv
}

func lookupString(src map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := src[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupStrings(src map[string]any, keys []string) []string {
	for _, k := range keys {
		v, ok := src[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case []string:
			return t
		case []any:
			out := make([]string, 0, len(t))
			for _, e := range t {
				if s, ok := e.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if t == "" {
				continue
			}
			parts := strings.Split(t, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return nil
}

func lookupInt(src map[string]any, keys []string) int {
	for _, k := range keys {
		v, ok := src[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t)
		case int:
			return t
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n
			}
		}
	}
	return 0
}
