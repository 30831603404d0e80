package repository

// Table names used for realtime change events. They match the GORM
// pluralised table names of the corresponding models.
const (
	TableProfiles      = "profiles"
	TablePosts         = "posts"
	TableLikes         = "likes"
	TableComments      = "comments"
	TableFollows       = "follows"
	TableHashtags      = "hashtags"
	TableNotifications = "notifications"
	TableCommunities   = "communities"
	TablePlans         = "study_plans"
	TableNotes         = "notes"
	TableTransactions  = "transactions"
)
