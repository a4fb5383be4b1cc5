package models

import "slices"

// Profile is the per-account user profile.
type Profile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Major      string   `json:"major"`
	Interests  []string `json:"interests"`
	Bio        string   `json:"bio"`
	Avatar     string   `json:"avatar"`
	GPA        string   `json:"gpa"`
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
}

// DefaultProfile is the profile an account starts with before anything is
// stored for it.
func DefaultProfile(accountID string) Profile {
	return Profile{
		ID:         accountID,
		Name:       "New User",
		Major:      "",
		Interests:  []string{},
		Bio:        "Prospective high-achiever.",
		Avatar:     "",
		GPA:        "3.8",
		Skills:     []string{"Python", "Teamwork", "Research"},
		Experience: []string{"Research Assistant @ McGill", "Intern @ Shopify"},
	}
}

// Clone returns a deep copy so callers can mutate slices freely.
func (p Profile) Clone() Profile {
	p.Interests = slices.Clone(p.Interests)
	p.Skills = slices.Clone(p.Skills)
	p.Experience = slices.Clone(p.Experience)
	return p
}
