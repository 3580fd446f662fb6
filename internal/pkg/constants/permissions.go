package constants

const (
	CreateProject        = "create_project"
	ViewOwnProjects      = "view_own_projects"
	ViewAllProjects      = "view_all_projects"
	UpdateProject        = "update_project"
	ViewVerifiedProjects = "view_verified_projects"
	PurchaseCredits      = "purchase_credits"
	ViewOwnTransactions  = "view_own_transactions"
)
