package services

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// Subject is an engineering department and the courses that have a
// community.
type Subject struct {
	Code    string   `json:"code"`
	Label   string   `json:"label"`
	Courses []string `json:"courses"`
}

// Course identifies one course community. Slug is the storage and URL form
// of Code.
type Course struct {
	Code    string `json:"code"`
	Slug    string `json:"slug"`
	Subject string `json:"subject"`
}

var subjects = []Subject{
	{Code: "ECSE", Label: "ECSE (Electrical/Computer)", Courses: []string{"ECSE 415", "ECSE 343", "ECSE 223", "ECSE 478 (Capstone)", "ECSE 551"}},
	{Code: "COMP", Label: "COMP (Computer Sci)", Courses: []string{"COMP 202", "COMP 206", "COMP 551"}},
	{Code: "CHEE", Label: "CHEE (Chemical Eng)"},
	{Code: "MECH", Label: "MECH (Mechanical Eng)"},
	{Code: "CIVE", Label: "CIVE (Civil Eng)"},
	{Code: "ABEN", Label: "ABEN (Agri/Bio Eng)"},
	{Code: "BMDE", Label: "BMDE (Biomedical Eng)"},
	{Code: "MIME", Label: "MIME (Materials Eng)"},
	{Code: "BIEN", Label: "BIEN (Bioengineering)"},
}

// programsBySubject lists the programs whose students show up in a
// subject's swipe decks. The first entry is the default program.
var programsBySubject = map[string][]string{
	"ECSE": {"Electrical Engineering", "Software Engineering", "Computer Engineering"},
	"COMP": {"Computer Science"},
	"CHEE": {"Chemical Engineering"},
	"MECH": {"Mechanical Engineering"},
	"CIVE": {"Civil Engineering"},
	"BMDE": {"Biomedical Engineering"},
	"MIME": {"Materials Engineering"},
	"BIEN": {"Bioengineering"},
	"ABEN": {"Agricultural Engineering"},
}

// majorPrograms is checked in order; the first keyword found in a major wins.
var majorPrograms = []struct {
	keywords []string
	program  string
}{
	{[]string{"software"}, "Software Engineering"},
	{[]string{"computer science", "comp sci"}, "Computer Science"},
	{[]string{"computer"}, "Computer Engineering"},
	{[]string{"electrical"}, "Electrical Engineering"},
	{[]string{"mechanical"}, "Mechanical Engineering"},
	{[]string{"chemical"}, "Chemical Engineering"},
	{[]string{"civil"}, "Civil Engineering"},
	{[]string{"biomed"}, "Biomedical Engineering"},
	{[]string{"material"}, "Materials Engineering"},
	{[]string{"bioengineering"}, "Bioengineering"},
	{[]string{"agric"}, "Agricultural Engineering"},
}

var demoNames = []string{
	"Sarah", "Omar", "Lina", "Adam", "Noor", "Youssef", "Maya", "Khaled",
	"Ava", "Zayn", "Lea", "Nora", "Hadi", "Sami", "Aya", "Rami",
}

var demoTaglines = []string{
	DefaultTagline,
	"Need a partner for labs + assignments",
	"Prefer someone consistent weekly",
	"Down to grind, let's ace this",
	"I'm strong in problem sets, weak in reports 😭",
	"I can help with coding, need help with theory",
	"Looking for 2-3 teammates",
	"Let's split work fairly & meet regularly",
}

const (
	DefaultTagline        = "Looking for group members"
	defaultClassmateName  = "McGill Student"
	defaultClassmateAge   = 20
	demoClassmatesPerDeck = 12
)

// Subjects returns the catalogue in display order.
func Subjects() []Subject {
	out := make([]Subject, len(subjects))
	for i, s := range subjects {
		s.Courses = slices.Clone(s.Courses)
		if s.Courses == nil {
			s.Courses = []string{}
		}
		out[i] = s
	}
	return out
}

// LookupCourse finds a catalogued course by code (any case) or slug.
func LookupCourse(s string) (Course, bool) {
	want := courseSlug(s)
	if want == "" {
		return Course{}, false
	}
	for _, sub := range subjects {
		for _, code := range sub.Courses {
			if courseSlug(code) == want {
				return Course{Code: code, Slug: want, Subject: sub.Code}, true
			}
		}
	}
	return Course{}, false
}

// SubjectOf returns the upper-cased code prefix of course when it names a
// known subject, or "".
func SubjectOf(course string) string {
	prefix, _, _ := strings.Cut(strings.TrimSpace(course), " ")
	prefix = strings.ToUpper(prefix)
	if _, ok := programsBySubject[prefix]; ok {
		return prefix
	}
	return ""
}

// ProgramsFor returns the programs admitted to a subject's decks, falling
// back to ECSE's for unknown subjects.
func ProgramsFor(subject string) []string {
	if p, ok := programsBySubject[subject]; ok {
		return slices.Clone(p)
	}
	return slices.Clone(programsBySubject["ECSE"])
}

// ProgramForMajor maps a free-text major onto a program, or fallback when
// no keyword matches.
func ProgramForMajor(major, fallback string) string {
	m := strings.ToLower(major)
	for _, mp := range majorPrograms {
		for _, kw := range mp.keywords {
			if strings.Contains(m, kw) {
				return mp.program
			}
		}
	}
	return fallback
}

// courseSlug lower-cases code and collapses every run of other characters
// into one dash: "ECSE 478 (Capstone)" becomes "ecse-478-capstone".
func courseSlug(code string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(code) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func generatedAvatar(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// seedHash is the 31-multiplier string hash over UTF-16 code units.
func seedHash(s string) uint32 {
	var h uint32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(c)
	}
	return h
}

// demoClassmates derives a course's demo students from its stored seed.
// The same seed always yields the same deck.
func demoClassmates(c Course, seed string) []models.Classmate {
	programs := ProgramsFor(c.Subject)
	base := seedHash(seed)

	out := make([]models.Classmate, 0, demoClassmatesPerDeck)
	for i := range demoClassmatesPerDeck {
		h := base + uint32(i)*9973
		name := demoNames[h%uint32(len(demoNames))]
		if h%2 != 0 {
			name += fmt.Sprintf(" %c.", 'A'+rune(h%26))
		}
		var gpa string
		if h%3 != 0 {
			gpa = fmt.Sprintf("%.1f", 3.2+float64(h%9)*0.1)
		}
		out = append(out, models.Classmate{
			ID:      fmt.Sprintf("demo_%s_%d_%x", c.Slug, i, h),
			Name:    name,
			Age:     19 + int(h%6),
			Program: programs[(h>>3)%uint32(len(programs))],
			GPA:     gpa,
			Image:   generatedAvatar(fmt.Sprintf("%s_%s_%d", c.Code, name, h)),
			Tagline: demoTaglines[(h>>5)%uint32(len(demoTaglines))],
			Demo:    true,
		})
	}
	return out
}
