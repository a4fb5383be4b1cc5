package common

// Storage keys. Every key is prefixed with the configured namespace.
const (
	AccountsKey      = "accounts"
	ActiveAccountKey = "active_account"
	GlobalCollabsKey = "global_collabs"

	profileKeyPrefix       = "profile_"
	heartedKeyPrefix       = "hearted_"
	joinedCoursesKeyPrefix = "joined_courses_"
	courseKeyPrefix        = "course_"
)

// ProfileKey returns the key holding the profile of accountID.
func ProfileKey(accountID string) string { return profileKeyPrefix + accountID }

// HeartedKey returns the key holding the saved items of accountID.
func HeartedKey(accountID string) string { return heartedKeyPrefix + accountID }

// JoinedCoursesKey returns the key holding the course slugs accountID joined.
func JoinedCoursesKey(accountID string) string { return joinedCoursesKeyPrefix + accountID }

// Course community keys. slug identifies the course; per-account keys add
// the account id.
func CourseChatKey(slug string) string   { return courseKeyPrefix + "chat_" + slug }
func CourseGroupsKey(slug string) string { return courseKeyPrefix + "groups_" + slug }
func CourseRosterKey(slug string) string { return courseKeyPrefix + "roster_" + slug }
func CourseSeedKey(slug string) string   { return courseKeyPrefix + "seed_" + slug }

func CourseSwipesKey(slug, accountID string) string {
	return courseKeyPrefix + "swipes_" + slug + "_" + accountID
}

func CourseMatchesKey(slug, accountID string) string {
	return courseKeyPrefix + "matches_" + slug + "_" + accountID
}

// CourseDMKey returns the key of the thread between a and b. The pair is
// unordered: both sides read and write the same key.
func CourseDMKey(slug, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return courseKeyPrefix + "dm_" + slug + "_" + a + "_" + b
}

// AccountHeaderName carries the acting account id on HTTP requests.
const AccountHeaderName = "X-Account-ID"

// DefaultAccountName is given to every freshly created account and profile.
const DefaultAccountName = "New User"
